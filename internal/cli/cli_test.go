package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaguanLabs/tlrun"
	"github.com/ZaguanLabs/tlrun/detect"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCommand(t *testing.T, args ...string) (*cobra.Command, *Flags) {
	t.Helper()
	f := &Flags{}
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	AddFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func TestAddFlags_Defaults(t *testing.T) {
	cmd, f := newTestCommand(t)

	assert.Equal(t, "en", f.Target)
	assert.False(t, f.HTML)
	for _, name := range []string{"target", "source", "html", "text", "debug", "dry-run", "cache-file", "cache-ttl", "stats", "ignore-tags"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestResolve_FlagBeatsEnv(t *testing.T) {
	t.Setenv("TLRUN_TARGET", "de")
	cmd, _ := newTestCommand(t, "--target", "fr")

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "fr", Resolve(v).Target)
}

func TestResolve_EnvBeatsDefault(t *testing.T) {
	t.Setenv("TLRUN_TARGET", "de")
	t.Setenv("TLRUN_DRY_RUN", "true")
	cmd, _ := newTestCommand(t)

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	f := Resolve(v)
	assert.Equal(t, "de", f.Target)
	assert.True(t, f.DryRun)
}

func TestResolve_TextWinsOverHTML(t *testing.T) {
	t.Setenv("TLRUN_HTML", "true")
	cmd, _ := newTestCommand(t, "--text")

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	assert.False(t, Resolve(v).HTML)
}

func TestResolve_HTMLAndTextFlagsTogether(t *testing.T) {
	cmd, _ := newTestCommand(t, "--html", "--text")

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	f := Resolve(v)
	assert.False(t, f.HTML)
	assert.True(t, f.Text)
}

func TestResolve_IgnoreTags(t *testing.T) {
	cmd, _ := newTestCommand(t, "--ignore-tags", "blockquote,pre")

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, []string{"blockquote", "pre"}, Resolve(v).IgnoreTags)
}

func TestNewConfig_ConventionalEnvNames(t *testing.T) {
	t.Setenv(EnvLibreURL, "http://libre.local")
	t.Setenv(EnvOpenAIKey, "sk-test")
	t.Setenv(EnvFakeUppercase, "1")
	cmd, _ := newTestCommand(t)

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://libre.local", v.GetString(KeyLibreURL))
	assert.Equal(t, "sk-test", v.GetString(KeyOpenAIKey))
	assert.True(t, FakeUppercase(v))
}

func TestNewConfig_PrefixedEnvWins(t *testing.T) {
	t.Setenv("TLRUN_LIBRE_URL", "http://mine.local")
	t.Setenv(EnvLibreURL, "http://libre.local")
	cmd, _ := newTestCommand(t)

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://mine.local", v.GetString(KeyLibreURL))
}

func TestFakeUppercase_OnlyOne(t *testing.T) {
	t.Setenv(EnvFakeUppercase, "yes")
	cmd, _ := newTestCommand(t)

	v, err := NewConfig(cmd)
	require.NoError(t, err)
	assert.False(t, FakeUppercase(v))
}

func TestReadInput(t *testing.T) {
	got, err := ReadInput(strings.NewReader("Hola\n"))
	require.NoError(t, err)
	assert.Equal(t, "Hola\n", got)

	_, err = ReadInput(strings.NewReader(""))
	assert.True(t, errors.Is(err, tlrun.ErrEmptyInput))
}

func TestWriteResult_SingleLineUnescaped(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, tlrun.Result{Translated: "<p>Hi\nthere</p>"}))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.Contains(t, out, `"translated":"<p>Hi\nthere</p>"`)
	assert.NotContains(t, out, `"error"`)
}

func TestWriteResult_EmptyInputError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, tlrun.Result{Error: tlrun.ErrEmptyInput.Error()}))

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]string{"error": "No input provided", "translated": ""}, got)
}

func TestServe_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	res := Serve(&buf, zap.NewNop(), "Bonjour", func() tlrun.Result {
		panic("boom")
	})

	assert.Equal(t, "Bonjour", res.Translated)
	assert.Equal(t, "Unexpected exception: boom", res.Error)

	var got tlrun.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "Bonjour", got.Translated)
}

func TestServe_WritesResult(t *testing.T) {
	var buf bytes.Buffer
	Serve(&buf, zap.NewNop(), "hola", func() tlrun.Result {
		return tlrun.Result{Translated: "HOLA"}
	})
	assert.Equal(t, "{\"translated\":\"HOLA\"}\n", buf.String())
}

func TestNewLogger_Disabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	var stderr bytes.Buffer

	logger := NewLogger(false, path, "offline", &stderr)
	logger.Debug("nothing")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, stderr.String())
}

func TestNewLogger_TagsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	logger := NewLogger(true, path, "online", &bytes.Buffer{})
	logger.Debug("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &line))
	assert.Equal(t, "online", line["runner"])
	assert.Len(t, line["run_id"], 36)
}

func TestOpenCache_BadRedisContinues(t *testing.T) {
	var stderr bytes.Buffer
	store := OpenCache(t.Context(), "not-a-url://", Flags{}, &stderr, zap.NewNop())

	assert.Nil(t, store)
	assert.Contains(t, stderr.String(), "continuing without cache")
}

func TestOpenCache_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	f := Flags{CacheFile: path}

	store := OpenCache(t.Context(), "", f, &bytes.Buffer{}, zap.NewNop())
	require.NotNil(t, store)
	require.NoError(t, store.Set("k", "v"))
	CloseCache(store, &bytes.Buffer{}, zap.NewNop())

	store = OpenCache(t.Context(), "", f, &bytes.Buffer{}, zap.NewNop())
	got, ok := store.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	PrintStats(&buf, tlrun.Result{Stats: tlrun.Stats{SourceLang: "es", TotalNodes: 3, TranslatedCount: 2, CachedCount: 1}})

	assert.Equal(t, "[translate] stats: source=es skipped=false nodes=3 translated=2 cached=1 failed=0\n", buf.String())
}

func TestDryRun_HTML(t *testing.T) {
	var buf bytes.Buffer
	DryRun(&buf, `<p>Hello</p><p>World</p><script>x()</script>`, Flags{HTML: true, Target: "es_ES"}, detect.Fixed{Lang: "af"})

	out := buf.String()
	assert.Contains(t, out, "Dry run: nl -> es_ES")
	assert.Contains(t, out, "Found 2 translatable text nodes")
	assert.Contains(t, out, `"Hello"`)
	assert.Contains(t, out, `"World"`)
}

func TestDryRun_IgnoreTagsAndExplicitSource(t *testing.T) {
	var buf bytes.Buffer
	f := Flags{HTML: true, Target: "zh-TW", Source: "en_US", IgnoreTags: []string{"blockquote"}}
	DryRun(&buf, `<p>Hello</p><blockquote>Quoted reply</blockquote>`, f, detect.Fixed{Lang: "fr"})

	out := buf.String()
	assert.Contains(t, out, "Dry run: en -> zh-TW")
	assert.Contains(t, out, "Found 1 translatable text nodes")
	assert.NotContains(t, out, "Quoted reply")
}

func TestDryRun_Text(t *testing.T) {
	var buf bytes.Buffer
	DryRun(&buf, "Grüß Gott", Flags{Target: "en"}, nil)

	assert.Equal(t, "Dry run: unknown -> en\nPlain text, 9 characters\n", buf.String())
}
