package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"

	"github.com/Shiki0138/leadfive-sub000/internal/imagery"
	"github.com/Shiki0138/leadfive-sub000/internal/ledger"
	"github.com/Shiki0138/leadfive-sub000/internal/post"
	"github.com/Shiki0138/leadfive-sub000/internal/testutil"
)

// Tests in this file share the root command and change the working
// directory, so none of them run in parallel.

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

const ledgerFile = ".leadfive/image-history.json"

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	now = func() time.Time { return testNow }
	t.Cleanup(func() { now = time.Now })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func withProvider(t *testing.T, env *testutil.TestEnv, photos ...testutil.FakePhoto) *testutil.FakeProvider {
	t.Helper()
	fake := testutil.NewFakeProvider(t, photos...)
	env.WriteProjectConfig("provider:\n  base_url: " + fake.URL() + "\n")
	t.Setenv("UNSPLASH_ACCESS_KEY", "test-key")
	return fake
}

func loadLedger(t *testing.T, env *testutil.TestEnv) []ledger.UsageRecord {
	t.Helper()
	return ledger.NewJSONStore(filepath.Join(env.ProjectDir, ledgerFile), nil).Load(context.Background())
}

func TestPostWithoutAccessKeyGeneratesImage(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	out, err := execute(t, "", "post", "--yes", "--title", "SEO Basics", "seo")
	require.NoError(t, err, out)

	assert.Contains(t, out, "⚠ UNSPLASH_ACCESS_KEY is not set")
	assert.Contains(t, out, "✓ Post written")

	content := env.ReadFile("_posts/2025-03-10-seo-basics.md")
	fm, body, err := post.Parse([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, "SEO Basics", fm.Title)
	assert.Equal(t, "/assets/images/blog/2025-03-10-seo-basics-featured.jpg", fm.Image)
	assert.True(t, fm.ImageGenerated)
	assert.Equal(t, "LeadFive", fm.Author)
	assert.Contains(t, body, "## はじめに")

	assert.True(t, env.FileExists("assets/images/blog/2025-03-10-seo-basics-featured.jpg"))
	assert.False(t, env.FileExists("assets/images/blog/2025-03-10-seo-basics-featured-credit.json"))

	records := loadLedger(t, env)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsGenerated())
	assert.Equal(t, "seo-basics", records[0].Post)
}

func TestPostInteractiveWithProvider(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	fake := withProvider(t, env, testutil.FakePhoto{ID: "photo-1", Photographer: "Jane Doe"})

	// keyword, title, description, category, tags, confirm
	stdin := "SEO\n\n\nブログ\nSEO, 集客\ny\n"
	out, err := execute(t, stdin, "post")
	require.NoError(t, err, out)

	assert.Contains(t, out, "Main keyword: ")
	assert.Contains(t, out, "Title [SEOで成果を出すための実践ガイド]: ")
	assert.Contains(t, out, "✓ Featured image")
	assert.Contains(t, out, "Photo by Jane Doe")

	fm, _, err := post.Parse([]byte(env.ReadFile("_posts/2025-03-10-seo-f6c9503d.md")))
	require.NoError(t, err)
	assert.Equal(t, "SEOで成果を出すための実践ガイド", fm.Title)
	assert.Equal(t, []string{"ブログ"}, fm.Categories)
	assert.Equal(t, []string{"SEO", "集客"}, fm.Tags)
	assert.Equal(t, "Jane Doe", fm.ImageCredit)
	assert.False(t, fm.ImageGenerated)

	assert.Equal(t, string(testutil.ImageBytes("photo-1")),
		env.ReadFile("assets/images/blog/2025-03-10-seo-f6c9503d-featured.jpg"))
	assert.True(t, env.FileExists("assets/images/blog/2025-03-10-seo-f6c9503d-featured-credit.json"))

	assert.Equal(t, []string{"photo-1"}, fake.Tracked())
	require.Len(t, fake.Searches(), 1)

	records := loadLedger(t, env)
	require.Len(t, records, 1)
	assert.Equal(t, "photo-1", records[0].PhotoID)
}

func TestPostProviderDownFallsBack(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	fake := withProvider(t, env, testutil.FakePhoto{ID: "photo-1"})
	fake.SetFailing(true)

	out, err := execute(t, "", "post", "--yes", "seo")
	require.NoError(t, err, out)
	assert.Contains(t, out, "generated placeholder")

	assert.True(t, env.FileExists("assets/images/blog/2025-03-10-seo-1fa90add-featured.jpg"))
	records := loadLedger(t, env)
	require.Len(t, records, 1)
	assert.True(t, strings.HasPrefix(records[0].PhotoID, ledger.GeneratedPrefix))
}

func TestPostAvoidsRecentPhotos(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	withProvider(t, env,
		testutil.FakePhoto{ID: "photo-1", Photographer: "A"},
		testutil.FakePhoto{ID: "photo-2", Photographer: "B"})

	_, err := execute(t, "", "post", "--yes", "--title", "First", "seo")
	require.NoError(t, err)
	_, err = execute(t, "", "post", "--yes", "--title", "Second", "seo")
	require.NoError(t, err)

	records := loadLedger(t, env)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].PhotoID, records[1].PhotoID)
}

func TestPostJapaneseTitlesOnSameDayKeepSeparateFiles(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	_, err := execute(t, "", "post", "--yes", "--title", "集客の基本", "SEO")
	require.NoError(t, err)
	_, err = execute(t, "", "post", "--yes", "--title", "ブランディング戦略", "SEO")
	require.NoError(t, err, "second post must not collide with the first")

	assert.Equal(t, []string{"2025-03-10-seo-bcaa05d2.md", "2025-03-10-seo-efdd38e9.md"}, env.ListDir("_posts"))

	first, _, err := post.Parse([]byte(env.ReadFile("_posts/2025-03-10-seo-bcaa05d2.md")))
	require.NoError(t, err)
	second, _, err := post.Parse([]byte(env.ReadFile("_posts/2025-03-10-seo-efdd38e9.md")))
	require.NoError(t, err)
	assert.Equal(t, "/assets/images/blog/2025-03-10-seo-bcaa05d2-featured.jpg", first.Image)
	assert.Equal(t, "/assets/images/blog/2025-03-10-seo-efdd38e9-featured.jpg", second.Image)
	assert.Len(t, env.ListDir("assets/images/blog"), 2)

	records := loadLedger(t, env)
	require.Len(t, records, 2)
	assert.NotEqual(t, records[0].Path, records[1].Path)
}

func TestPlaceholderFontPath(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	env.WriteProjectConfig("fallback:\n  font_path: fonts/missing.ttf\n")
	_, err := execute(t, "", "post", "--yes", "--title", "SEO Basics", "seo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback.font_path")
	assert.Empty(t, env.ListDir("_posts"))

	out, err := execute(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ fonts/missing.ttf")

	env.CreateFile("fonts/go.ttf", string(gobold.TTF))
	env.WriteProjectConfig("fallback:\n  font_path: fonts/go.ttf\n")
	out, err = execute(t, "", "post", "--yes", "--title", "SEO Basics", "seo")
	require.NoError(t, err, out)
	assert.True(t, env.FileExists("assets/images/blog/2025-03-10-seo-basics-featured.jpg"))

	out, err = execute(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ fonts/go.ttf")
}

func TestPostRefusesOverwrite(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	_, err := execute(t, "", "post", "--yes", "--no-image", "--title", "SEO Basics")
	require.NoError(t, err)

	_, err = execute(t, "", "post", "--yes", "--title", "SEO Basics")
	require.Error(t, err)
	assert.True(t, errors.Is(err, post.ErrExists))
	assert.Empty(t, env.ListDir("assets/images/blog"), "no image is written for a refused post")

	_, err = execute(t, "", "post", "--yes", "--no-image", "--force", "--title", "SEO Basics", "--description", "updated")
	require.NoError(t, err)
	assert.Contains(t, env.ReadFile("_posts/2025-03-10-seo-basics.md"), "description: updated")
}

func TestPostNoImage(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	_, err := execute(t, "", "post", "--yes", "--no-image", "--title", "Plain")
	require.NoError(t, err)

	fm, _, err := post.Parse([]byte(env.ReadFile("_posts/2025-03-10-plain.md")))
	require.NoError(t, err)
	assert.Empty(t, fm.Image)
	assert.False(t, env.FileExists(ledgerFile))
}

func TestPostCancelled(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	out, err := execute(t, "\n\n\n\nn\n", "post", "seo")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")
	assert.Empty(t, env.ListDir("_posts"))
}

func TestPostRequiresTitle(t *testing.T) {
	testutil.SetupTestEnv(t)

	_, err := execute(t, "", "post", "--yes")
	assert.ErrorIs(t, err, post.ErrTitleRequired)
}

func TestImageCommandJSON(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	out, err := execute(t, "", "image", "--title", "Growth Hacks", "--date", "2025-02-01", "--json")
	require.NoError(t, err, out)

	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0, out)
	var res imagery.Result
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &res))
	assert.True(t, res.Generated)
	assert.Equal(t, "/assets/images/blog/2025-02-01-growth-hacks-featured.jpg", res.Path)
	assert.True(t, env.FileExists("assets/images/blog/2025-02-01-growth-hacks-featured.jpg"))
}

func TestImageCommandRequiresTitle(t *testing.T) {
	testutil.SetupTestEnv(t)

	_, err := execute(t, "", "image", "--keyword", "seo")
	assert.Error(t, err)
}

func seedLedger(t *testing.T, env *testutil.TestEnv) {
	t.Helper()
	env.CreateFile(ledgerFile, `[
  {"photo_id": "recent-b", "used_at": "2025-03-09T09:00:00Z", "path": "/b.jpg", "post": "b"},
  {"photo_id": "old", "used_at": "2025-02-01T09:00:00Z", "path": "/o.jpg", "post": "o"},
  {"photo_id": "generated-1", "used_at": "2025-03-08T09:00:00Z", "path": "/g.jpg", "post": "g"},
  {"photo_id": "broken", "used_at": "yesterday", "path": "/x.jpg", "post": "x"}
]
`)
}

func TestLedgerCommands(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	seedLedger(t, env)

	out, err := execute(t, "", "ledger", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "recent")
	assert.Contains(t, out, "1 day ago")
	assert.Contains(t, out, "expired")
	assert.Contains(t, out, `"yesterday"`)

	out, err = execute(t, "", "ledger", "recent")
	require.NoError(t, err)
	assert.Equal(t, "generated-1\nrecent-b\n", out)

	out, err = execute(t, "", "ledger", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:   4")
	assert.Contains(t, out, "Recent:    2 (last 7 days)")
	assert.Contains(t, out, "Invalid:   1")
	assert.Contains(t, out, "Generated: 1")

	out, err = execute(t, "", "ledger", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Pruned 2 records, 2 kept")

	var ids []string
	for _, r := range loadLedger(t, env) {
		ids = append(ids, r.PhotoID)
	}
	assert.Equal(t, []string{"recent-b", "generated-1"}, ids)
}

func TestLedgerEmpty(t *testing.T) {
	testutil.SetupTestEnv(t)

	out, err := execute(t, "", "ledger", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No images recorded")

	out, err = execute(t, "", "ledger", "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "No photos used in the last 7 days")
}

func TestLedgerSQLiteBackend(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.WriteProjectConfig("ledger:\n  backend: sqlite\n  path: .leadfive/ledger.db\n")

	_, err := execute(t, "", "post", "--yes", "--title", "SQLite Post")
	require.NoError(t, err)

	out, err := execute(t, "", "ledger", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Records:   1")
	assert.True(t, env.FileExists(".leadfive/ledger.db"))
}

func TestPostsList(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	_, err := execute(t, "", "post", "--yes", "--no-image", "--title", "Older", "--date", "2025-01-01")
	require.NoError(t, err)
	_, err = execute(t, "", "post", "--yes", "--title", "Newer", "--date", "2025-02-01")
	require.NoError(t, err)
	env.CreateFile("_posts/README.md", "not a post")

	out, err := execute(t, "", "posts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* 2025-02-01-newer.md  Newer")
	assert.Contains(t, out, "! 2025-01-01-older.md  Older")
	assert.Less(t, strings.Index(out, "Newer"), strings.Index(out, "Older"))

	out, err = execute(t, "", "posts", "list", "--limit", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "Older")
}

func TestConfigCommands(t *testing.T) {
	env := testutil.SetupTestEnv(t)

	out, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Wrote")
	assert.True(t, env.FileExists(".leadfive/config.yaml"))

	_, err = execute(t, "", "config", "init")
	assert.Error(t, err)

	_, err = execute(t, "", "config", "init", "--global")
	require.NoError(t, err)
	assert.True(t, env.FileExists(filepath.Join(env.GlobalDir, "config.yaml")))

	out, err = execute(t, "", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(env.Home, ".leadfive", "config.yaml"))

	out, err = execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "posts_dir: _posts")
	assert.Contains(t, out, "# UNSPLASH_ACCESS_KEY: not set")
	assert.NotContains(t, out, "secrets")
}

func TestExplicitConfigFlag(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.CreateFile("custom.yaml", "site:\n  posts_dir: content/posts\n")

	_, err := execute(t, "", "--config", "custom.yaml", "post", "--yes", "--no-image", "--title", "Custom")
	require.NoError(t, err)
	assert.True(t, env.FileExists("content/posts/2025-03-10-custom.md"))
}

func TestInvalidConfig(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.WriteProjectConfig("ledger:\n  backend: redis\n")

	_, err := execute(t, "", "ledger", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.backend")

	out, err := execute(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "✗ config valid")
}

func TestDoctor(t *testing.T) {
	env := testutil.SetupTestEnv(t)
	env.CreateFile("_posts/.keep", "")
	env.CreateFile("assets/images/blog/.keep", "")
	seedLedger(t, env)

	out, err := execute(t, "", "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ config valid")
	assert.Contains(t, out, "⚠ UNSPLASH_ACCESS_KEY")
	assert.Contains(t, out, "→ 4 records")
	assert.Contains(t, out, "✓ _posts")
	assert.Contains(t, out, "✓ assets/images/blog")
	assert.Contains(t, out, "Results: 4 passed, 0 failed")
}

func TestVersion(t *testing.T) {
	testutil.SetupTestEnv(t)

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "leadfive "))
}
