package deeplink

import (
	"testing"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appDoc = `{"pages": [
	{
		"uuid": "20000001",
		"name": "底部分頁容器",
		"subComponents": [
			{"uuid": "home", "name": "垂直捲動容器", "parameters": {"title": "Home"}},
			{
				"uuid": "club", "name": "垂直捲動容器", "parameters": {"title": "Club"},
				"subComponents": [{
					"uuid": "boards", "name": "頁籤分頁容器",
					"parameters": {"selectedIndex": "{{int-boardIndex}}", "tabTitles": ["{{Hot}}", "New"]}
				}]
			},
			{"uuid": "content", "name": "垂直捲動容器", "parameters": {"title": "內容"}},
			{"uuid": "quote", "name": "行情頁"}
		]
	},
	{
		"uuid": "news",
		"name": "page",
		"parameters": {"title": "News"},
		"subComponents": [{
			"uuid": "sections", "name": "分頁容器",
			"parameters": {"currentIndex": "{{int-newsSectionIndex}}"},
			"subComponents": [
				{"uuid": "s1", "parameters": {"title": "Latest"}},
				{"uuid": "s2", "parameters": {"title": "Popular"}}
			]
		}]
	}
]}`

func mustParse(t *testing.T, data string) *blueprint.Document {
	t.Helper()
	doc, err := blueprint.Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

func TestResolve_NilDocument(t *testing.T) {
	pages, params := Resolve(nil, Options{})

	assert.Len(t, pages, 5)
	assert.True(t, pages[blueprint.DefaultRootID].IsBuiltin)
	assert.Equal(t, "2330", params[KeyCommKey].Default)
	assert.Empty(t, params[KeyMainTabIndex].Options)
}

func TestResolve_MainTabOptions(t *testing.T) {
	doc := mustParse(t, appDoc)

	_, params := Resolve(doc, Options{})
	assert.Equal(t, []Option{
		{Index: "0", Title: "Home"},
		{Index: "1", Title: "Club"},
		{Index: "2", Title: "內容"},
		{Index: "3", Title: "行情頁"},
	}, params[KeyMainTabIndex].Options)
}

func TestResolve_DiscoversIndexBindings(t *testing.T) {
	doc := mustParse(t, appDoc)

	pages, params := Resolve(doc, Options{})

	board := params[KeyBoardIndex]
	assert.Equal(t, "Board Index", board.Label, "well-known label kept")
	assert.Equal(t, []Option{{Index: "0", Title: "Hot"}, {Index: "1", Title: "New"}}, board.Options)

	news := params["int-newsSectionIndex"]
	assert.Equal(t, "newsSectionIndex", news.Label)
	assert.Equal(t, "0", news.Default)
	assert.Equal(t, []Option{{Index: "0", Title: "Latest"}, {Index: "1", Title: "Popular"}}, news.Options)

	root := pages[blueprint.DefaultRootID]
	assert.True(t, root.IsBuiltin)
	assert.Equal(t, []string{KeyMainTabIndex, KeyBoardIndex}, root.AcceptedKeys)

	newsPage := pages["news"]
	assert.False(t, newsPage.IsBuiltin)
	assert.Equal(t, "News", newsPage.Name)
	assert.Equal(t, []string{"int-newsSectionIndex"}, newsPage.AcceptedKeys)
}

func TestResolve_LastBindingWins(t *testing.T) {
	doc := mustParse(t, `{"pages": [
		{"uuid": "a", "parameters": {"index": "{{int-x}}", "titles": ["first"]}},
		{"uuid": "b", "parameters": {"index": "{{int-x}}", "titles": ["second"]}}
	]}`)

	_, params := Resolve(doc, Options{})
	assert.Equal(t, []Option{{Index: "0", Title: "second"}}, params["int-x"].Options)
}

func TestResolve_IgnoresNonKeyTemplates(t *testing.T) {
	doc := mustParse(t, `{"pages": [
		{"uuid": "a", "parameters": {"index": "{{not a key}}", "titles": ["x"]}},
		{"uuid": "b", "parameters": {"index": "{{int-y}}"}}
	]}`)

	pages, params := Resolve(doc, Options{})
	assert.Len(t, params, len(wellKnownParams()))
	assert.Empty(t, pages["a"].AcceptedKeys)
	assert.NotNil(t, pages["b"].AcceptedKeys)
}

func TestFindChildIndex(t *testing.T) {
	doc := mustParse(t, appDoc)

	tests := []struct {
		name     string
		keywords []string
		parentID string
		want     Match
	}{
		{"by title", []string{"club"}, "", Match{Index: "1", ChildID: "club", Label: "Club", Found: true}},
		{"first matching child wins", []string{"社團", "內容"}, "", Match{Index: "2", ChildID: "content", Label: "內容", Found: true}},
		{"by type", []string{"行情"}, "", Match{Index: "3", ChildID: "quote", Label: "行情頁", Found: true}},
		{"explicit parent", []string{"popular"}, "sections", Match{Index: "1", ChildID: "s2", Label: "Popular", Found: true}},
		{"no match", []string{"missing"}, "", Match{Index: "0"}},
		{"unknown parent", []string{"club"}, "nope", Match{Index: "0"}},
		{"empty keyword skipped", []string{""}, "", Match{Index: "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindChildIndex(doc, tt.keywords, tt.parentID, Options{}))
		})
	}
}

func TestFindChildIndex_NilDocument(t *testing.T) {
	assert.Equal(t, Match{Index: "0"}, FindChildIndex(nil, []string{"club"}, "", Options{}))
}

func TestSuggest(t *testing.T) {
	doc := mustParse(t, appDoc)

	m := Suggest(doc, "hme", "", Options{})
	assert.True(t, m.Found)
	assert.Equal(t, "0", m.Index)
	assert.Equal(t, "home", m.ChildID)

	m = Suggest(doc, "zzz", "", Options{})
	assert.False(t, m.Found)
	assert.Equal(t, "0", m.Index)
}

func TestPreset(t *testing.T) {
	doc := mustParse(t, appDoc)

	l, err := Preset(doc, PresetClubArticle, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"20000001", PageClubArticle}, l.Stack)
	v, ok := l.Get(KeyMainTabIndex)
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	l, err = Preset(doc, PresetStock, Options{})
	require.NoError(t, err)
	v, _ = l.Get(KeyMainTabIndex)
	assert.Equal(t, "3", v)
	assert.Equal(t, "https://www.cmoney.tw/app/?uuids=20000001,40000001&int-main_tab_index=3&string-stateCommKey=2330", l.URL(""))

	l, err = Preset(nil, PresetContentVideo, Options{})
	require.NoError(t, err)
	v, _ = l.Get(KeyContentSection)
	assert.Equal(t, "1", v)

	_, err = Preset(doc, "bogus", Options{})
	assert.ErrorIs(t, err, ErrUnknownPreset)
}

func TestLinkURL(t *testing.T) {
	l := Link{Stack: []string{"a", "b"}}
	l.Set("int-x", "1")
	l.Set("long-y", "")
	l.Set("string-z", "a b")
	l.Set("int-x", "2")

	assert.Equal(t, "https://example.com/?uuids=a,b&int-x=2&string-z=a+b", l.URL("https://example.com/"))
	assert.Equal(t, "int-x", l.Params[0].Key, "Set keeps insertion order")
}

func TestParseParams(t *testing.T) {
	params, err := ParseParams([]string{"int-a=1", " long-b = 2 "})
	require.NoError(t, err)
	assert.Equal(t, []Param{{Key: "int-a", Value: "1"}, {Key: "long-b", Value: "2"}}, params)

	_, err = ParseParams([]string{"noequals"})
	assert.Error(t, err)
}
