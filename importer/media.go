package importer

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mtheuszin1/adscale-deploy/media"
)

// LoadMediaDir registers every regular, non-hidden file of dir in lexical order.
// Each asset's content is its public URL under baseURL.
func LoadMediaDir(dir, baseURL string) (*media.Library, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read media dir %s: %w", dir, err)
	}

	lib := media.NewLibrary()
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		lib.Add(e.Name(), MediaURL(baseURL, e.Name()))
	}
	return lib, nil
}

// MediaURL joins baseURL and a file name.
func MediaURL(baseURL, name string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + url.PathEscape(name)
}
