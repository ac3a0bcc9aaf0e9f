package resource

import (
	"sort"

	"github.com/leonelquinteros/gotext"
)

// POParser reads gettext catalogs. The msgid is the key and the first msgstr the value.
// Untranslated entries, as found in .pot templates, use the msgid as value.
type POParser struct{}

// NewPOParser returns the gettext parser.
func NewPOParser() *POParser { return &POParser{} }

func (p *POParser) Format() string       { return "po" }
func (p *POParser) Extensions() []string { return []string{".po", ".pot"} }

func (p *POParser) Parse(data []byte) ([]Pair, error) {
	po := gotext.NewPo()
	po.Parse(stripBOM(data))

	translations := po.GetDomain().GetTranslations()
	ids := make([]string, 0, len(translations))
	for id := range translations {
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]Pair, 0, len(ids))
	for _, id := range ids {
		value := id
		if t := translations[id]; t != nil && t.Trs[0] != "" {
			value = t.Trs[0]
		}
		pairs = append(pairs, Pair{Key: id, Value: value})
	}
	return pairs, nil
}
