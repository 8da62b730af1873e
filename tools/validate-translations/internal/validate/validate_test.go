package validate_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/tools/validate-translations/internal/validate"
)

func file(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func locales() fstest.MapFS {
	return fstest.MapFS{
		"en/common.json": file(`{
			"nav": {"home": "Home", "about": "About us"},
			"greeting": "Hello {{name}}",
			"progress": "{{current}} of {{total}}",
			"brand": "OK",
			"footer": "All rights reserved"
		}`),
		"en/assessment.json": file(`{"start": "Start assessment"}`),
		"zh/common.json": file(`{
			"nav": {"home": "首页", "about": "关于我们"},
			"greeting": "你好 {{name}}",
			"progress": "{{ current }}/{{total}}",
			"brand": "OK",
			"footer": "版权所有"
		}`),
		"zh/assessment.json": file(`{"start": "开始评估"}`),
		"es/common.json": file(`{
			"nav": "Inicio",
			"greeting": "Hola {{nombre}}",
			"progress": "",
			"footer": "All rights reserved",
			"legacy": "Viejo"
		}`),
		"ja/common.json":      file(`{"nav": {"home": "ホーム"}`),
		"ja/assessment.json":  file(`{"start": "開始"}`),
		"es/assessment.json":  file(`{"start": 5}`),
		"docs/assessment.txt": file(`ignored`),
	}
}

func kinds(r *validate.Report, lang string) map[string]validate.Kind {
	out := make(map[string]validate.Kind)
	for _, i := range r.Issues {
		if i.Language == lang {
			out[i.Namespace+":"+i.Key] = i.Kind
		}
	}
	return out
}

func TestRun_CleanLanguageHasNoIssues(t *testing.T) {
	t.Parallel()

	r, err := validate.Run(locales(), validate.Options{Base: "en", Languages: []string{"zh"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"assessment", "common"}, r.Namespaces)
	assert.Empty(t, r.Issues)
	assert.False(t, r.Failed(true))
}

func TestRun_DetectsEachIssueClass(t *testing.T) {
	t.Parallel()

	r, err := validate.Run(locales(), validate.Options{Base: "en", Languages: []string{"es", "ja"}})
	require.NoError(t, err)

	es := kinds(r, "es")
	assert.Equal(t, validate.KindTypeMismatch, es["common:nav"])
	assert.Equal(t, validate.KindPlaceholderMismatch, es["common:greeting"])
	assert.Equal(t, validate.KindEmptyValue, es["common:progress"])
	assert.Equal(t, validate.KindMissingKey, es["common:brand"])
	assert.Equal(t, validate.KindUntranslated, es["common:footer"])
	assert.Equal(t, validate.KindExtraKey, es["common:legacy"])
	assert.Equal(t, validate.KindTypeMismatch, es["assessment:start"])

	ja := kinds(r, "ja")
	assert.Equal(t, validate.KindInvalidJSON, ja["common:"])
	assert.NotContains(t, ja, "assessment:start")

	assert.True(t, r.Failed(false))
	assert.Equal(t, 2, r.Count(validate.SeverityWarning))
}

func TestRun_MissingNamespaceAndDefaultLanguages(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"en/common.json": file(`{"a": "Alpha"}`),
		"en/extra.json":  file(`{"b": "Beta"}`),
		"fr/common.json": file(`{"a": "Alpha français"}`),
	}
	r, err := validate.Run(fsys, validate.Options{})
	require.NoError(t, err)
	assert.Equal(t, "en", r.Base)
	assert.Equal(t, []string{"fr"}, r.Languages)
	require.Len(t, r.Issues, 1)
	assert.Equal(t, validate.KindMissingNamespace, r.Issues[0].Kind)
	assert.Equal(t, "extra", r.Issues[0].Namespace)
}

func TestRun_StrictPromotesWarnings(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"en/common.json": file(`{"title": "Welcome back"}`),
		"de/common.json": file(`{"title": "Welcome back"}`),
	}
	r, err := validate.Run(fsys, validate.Options{Base: "en"})
	require.NoError(t, err)
	assert.False(t, r.Failed(false))
	assert.True(t, r.Failed(true))
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"current", "total"}, validate.Placeholders("{{total}}: {{ current }} {{current}}"))
	assert.Nil(t, validate.Placeholders("none"))
}
