package deeplink

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matsen/blueprint/internal/blueprint"
)

// DefaultBaseURL is the app link prefix used when none is configured.
const DefaultBaseURL = "https://www.cmoney.tw/app/"

// ErrUnknownPreset is returned for a preset name that is not defined.
var ErrUnknownPreset = errors.New("unknown preset")

// Param is one key/value pair of a link, in insertion order.
type Param struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Link is a page stack plus the parameters passed to it.
type Link struct {
	Stack  []string `json:"stack"`
	Params []Param  `json:"params"`
}

// Set assigns value to key, replacing an earlier value in place.
func (l *Link) Set(key, value string) {
	for i := range l.Params {
		if l.Params[i].Key == key {
			l.Params[i].Value = value
			return
		}
	}
	l.Params = append(l.Params, Param{Key: key, Value: value})
}

// Get returns the value of key and whether it is set.
func (l Link) Get(key string) (string, bool) {
	for _, p := range l.Params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// URL renders the link as base?uuids=a,b&key=value. Parameters with an
// empty value are left out.
func (l Link) URL(base string) string {
	if base == "" {
		base = DefaultBaseURL
	}

	var sb strings.Builder
	sb.WriteString(base)
	sb.WriteString("?uuids=")
	sb.WriteString(strings.Join(l.Stack, ","))
	for _, p := range l.Params {
		if p.Value == "" {
			continue
		}
		sb.WriteString("&")
		sb.WriteString(p.Key)
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}

// Preset names.
const (
	PresetCustom         = "custom"
	PresetClubBoard      = "club-board"
	PresetClubArticle    = "club-article"
	PresetContentArticle = "content-article"
	PresetContentVideo   = "content-video"
	PresetStock          = "stock"
)

// PresetNames lists the presets in display order.
var PresetNames = []string{
	PresetCustom,
	PresetClubBoard,
	PresetClubArticle,
	PresetContentArticle,
	PresetContentVideo,
	PresetStock,
}

var (
	clubKeywords    = []string{"社團", "Club"}
	contentKeywords = []string{"內容", "Content"}
	stockKeywords   = []string{"選股", "行情", "Stock", "Quote"}
)

// Preset builds the starting link for a named scenario. The main tab index
// is located by keyword in doc, which may be nil.
func Preset(doc *blueprint.Document, name string, opts Options) (Link, error) {
	l := Link{Stack: []string{opts.rootID()}}

	mainTab := func(keywords []string) {
		l.Set(KeyMainTabIndex, FindChildIndex(doc, keywords, "", opts).Index)
	}

	switch name {
	case PresetCustom:
		l.Set(KeyMainTabIndex, defaultIndex)
	case PresetClubBoard:
		mainTab(clubKeywords)
		l.Set(KeyBoardIndex, defaultIndex)
		l.Set(KeyBoardID, "")
	case PresetClubArticle:
		mainTab(clubKeywords)
		l.Stack = append(l.Stack, PageClubArticle)
		l.Set(KeyBoardIndex, defaultIndex)
		l.Set(KeyArticleID, "")
	case PresetContentArticle:
		mainTab(contentKeywords)
		l.Stack = append(l.Stack, PageArticleDetail)
		l.Set(KeyContentSection, "0")
		l.Set(KeyNotesContentTab, "0")
		l.Set(KeyDetailPageParam, "")
	case PresetContentVideo:
		mainTab(contentKeywords)
		l.Stack = append(l.Stack, PageVideoDetail)
		l.Set(KeyContentSection, "1")
		l.Set(KeyDetailPageParam, "")
	case PresetStock:
		mainTab(stockKeywords)
		l.Stack = append(l.Stack, PageStock)
		l.Set(KeyCommKey, defaultCommodityValue)
	default:
		return Link{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return l, nil
}

// ParseParams reads key=value pairs into a link's parameters.
func ParseParams(pairs []string) ([]Param, error) {
	params := make([]Param, 0, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q: want key=value", pair)
		}
		params = append(params, Param{Key: k, Value: strings.TrimSpace(v)})
	}
	return params, nil
}
