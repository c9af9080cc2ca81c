package normalizer

import (
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/mtheuszin1/adscale-deploy/classifier"
)

// RawRecord is one imported row with arbitrary column names.
type RawRecord map[string]any

// Accepted column names per logical field, in priority order.
var (
	IDKeys          = []string{"id", "id ad", "uuid", "identificador"}
	TitleKeys       = []string{"página", "anunciante", "page", "brand", "name", "título", "nome", "marca"}
	CopyKeys        = []string{"descrição", "copy", "text", "texto", "body", "anúncio", "creative text"}
	MediaKeys       = []string{"url criativo", "image_url", "media", "link imagem", "creative url", "thumbnail", "video_url", "media_url", "creative_url", "link", "img_url", "video url", "link video", "creative_media"}
	ActiveCountKeys = []string{"info ads", "active ads", "anúncios ativos", "count", "quantidade"}
	TicketKeys      = []string{"ticket", "preço", "price", "valor", "ticket médio"}
	FunnelKeys      = []string{"funil", "funnel", "mecanismo", "estratégia"}
	SalesPageKeys   = []string{"url destino", "página vendas", "sales page", "destination url", "landing page", "link de destino"}
	LibraryKeys     = []string{"url biblioteca", "library url", "facebook library", "link biblioteca", "ad library url"}
	DaysActiveKeys  = []string{"dias ativos", "days active", "running for", "dias", "days", "tempo rodando"}
	DisplayURLKeys  = []string{"display url", "site", "domínio", "url"}
	CTAKeys         = []string{"cta", "botão", "action", "chamada"}
	CheckoutKeys    = []string{"checkout", "url checkout", "link checkout", "checkout url"}
	CTRKeys         = []string{"ctr", "estimated ctr", "ctr estimado", "ctr (%)"}
	PlatformKeys    = []string{"platform", "plataforma", "rede"}
)

// mediaHeaderHints mark columns that may carry a media reference beyond MediaKeys.
var mediaHeaderHints = []string{"url", "media", "link", "imagem", "video", "file"}

// idHeaderHints mark identifier columns; exports often name the creative file after the ad id.
var idHeaderHints = []string{"ad id", "uuid"}

// fieldIndex maps folded column names to their values so lookups do not depend on map order.
type fieldIndex map[string]string

func indexRecord(raw RawRecord) fieldIndex {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	// Two columns folding to the same name: the lexically first original key wins.
	sort.Strings(keys)

	idx := make(fieldIndex, len(raw))
	for _, k := range keys {
		folded := classifier.Fold(strings.TrimSpace(k))
		if _, seen := idx[folded]; seen {
			continue
		}
		idx[folded] = strings.TrimSpace(cast.ToString(raw[k]))
	}
	return idx
}

// lookup returns the first non-empty value among synonyms.
func (idx fieldIndex) lookup(synonyms []string) (string, bool) {
	for _, s := range synonyms {
		if v, ok := idx[s]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (idx fieldIndex) lookupOr(synonyms []string, fallback string) string {
	if v, ok := idx.lookup(synonyms); ok {
		return v
	}
	return fallback
}

// mediaCandidates returns the values that may reference an uploaded asset, in the order
// they are tried: MediaKeys, then other columns whose header hints at media, then
// identifier columns. Columns claimed by another URL field are skipped. refs excludes
// the identifiers.
func (idx fieldIndex) mediaCandidates() (refs, ids []string) {
	owned := make(map[string]bool)
	for _, keys := range [][]string{SalesPageKeys, LibraryKeys, CheckoutKeys, DisplayURLKeys, IDKeys} {
		for _, k := range keys {
			owned[k] = true
		}
	}

	seen := make(map[string]bool)
	add := func(dst []string, v string) []string {
		if v == "" || seen[v] {
			return dst
		}
		seen[v] = true
		return append(dst, v)
	}

	for _, k := range MediaKeys {
		refs = add(refs, idx[k])
		owned[k] = true
	}

	headers := make([]string, 0, len(idx))
	for k := range idx {
		headers = append(headers, k)
	}
	sort.Strings(headers)

	for _, h := range headers {
		if !owned[h] && containsAny(h, mediaHeaderHints) && !containsAny(h, idHeaderHints) {
			refs = add(refs, idx[h])
		}
	}

	for _, k := range IDKeys {
		ids = add(ids, idx[k])
	}
	for _, h := range headers {
		if !slices.Contains(IDKeys, h) && containsAny(h, idHeaderHints) {
			ids = add(ids, idx[h])
		}
	}
	return refs, ids
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
