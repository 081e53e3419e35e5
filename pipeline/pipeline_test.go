package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/personascope/analysis"
	"github.com/c360studio/personascope/config"
	"github.com/c360studio/personascope/vocabulary/persona"
)

func newPipeline(t *testing.T, modify func(*config.Config)) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()
	if modify != nil {
		modify(cfg)
	}
	require.NoError(t, cfg.Validate())
	return New(cfg, nil)
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	// u1 trusts less in September but is still around in October; no
	// November data exists, so October churns structurally.
	csv := "user_id,month,text\n" +
		"u1,2025-09,\"Ik reken hierop, maar dit voelt niet veilig.\"\n" +
		"u1,2025-10,\"Nog steeds onbetrouwbaar. Klaar mee.\"\n"

	result := newPipeline(t, nil).Run(csv)

	require.Len(t, result.Records, 2)
	require.NotEmpty(t, result.RunID)

	september := result.Records[0]
	assert.Equal(t, persona.TrustErosion, september.Dominant)
	assert.True(t, september.Active)

	october := result.Records[1]
	assert.Equal(t, persona.Emotional, october.Dominant)
	assert.False(t, october.Active)

	agg, ok := result.Aggregates.Lookup("2025-09", persona.TrustErosion)
	require.True(t, ok)
	assert.Equal(t, 1, agg.Users)
	assert.Equal(t, 1, agg.Retained)

	agg, ok = result.Aggregates.Lookup("2025-10", persona.Emotional)
	require.True(t, ok)
	assert.Equal(t, 1, agg.Churned)
}

func TestPipeline_Run_EmptyInput(t *testing.T) {
	result := newPipeline(t, nil).Run("user_id,month,text\n")

	assert.True(t, result.Empty())
	assert.Zero(t, result.RowCount)
	assert.Empty(t, result.Aggregates.Rows())
}

func TestPipeline_Run_MultiMode(t *testing.T) {
	csv := "user_id,month,text\n" +
		"u1,2025-09,\"Klacht ingediend, het is te veel tegelijk.\"\n"

	result := newPipeline(t, func(c *config.Config) {
		c.Classification.Mode = "multi"
	}).Run(csv)

	_, hasEscalation := result.Aggregates.Lookup("2025-09", persona.Escalation)
	_, hasOverload := result.Aggregates.Lookup("2025-09", persona.Overload)
	assert.True(t, hasEscalation)
	assert.True(t, hasOverload)
}

func TestPipeline_Run_KeywordOverrides(t *testing.T) {
	result := newPipeline(t, func(c *config.Config) {
		c.Classification.Keywords = map[string][]string{
			"suggestion": {"dark mode"},
		}
	}).Run("user_id,month,text\nu1,2025-09,graag dark mode\n")

	require.Len(t, result.Records, 1)
	assert.Equal(t, persona.Suggestion, result.Records[0].Dominant)
}

func TestPipeline_RunFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback.csv")
	require.NoError(t, os.WriteFile(path, []byte("user_id,month,text\nu1,2025-09,storing\n"), 0644))

	result, err := newPipeline(t, nil).RunFiles([]string{path})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RowCount)
	assert.Equal(t, persona.Reliability, result.Records[0].Dominant)
}

func TestPipeline_RunFiles_GlobMergesAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sep.csv"),
		[]byte("user_id,month,text\nu1,2025-09,eerste deel\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sep2.csv"),
		[]byte("user_id,month,text,active_next_month\nu1,2025-09,tweede deel,1\n"), 0644))

	result, err := newPipeline(t, nil).RunFiles([]string{filepath.Join(dir, "*.csv")})
	require.NoError(t, err)

	require.Len(t, result.Records, 1)
	assert.Equal(t, "eerste deel\ntweede deel", result.Records[0].Text)
	assert.True(t, result.Records[0].Active)
}

func TestPipeline_RunFiles_NoMatches(t *testing.T) {
	_, err := newPipeline(t, nil).RunFiles([]string{filepath.Join(t.TempDir(), "*.csv")})
	assert.Error(t, err)
}

func TestPipeline_RunFiles_UnreadableFile(t *testing.T) {
	_, err := newPipeline(t, nil).RunFiles([]string{filepath.Join(t.TempDir(), "missing.csv")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read file")
}

func TestExpandInputs_LiteralAndGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.csv"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}

	paths, err := ExpandInputs([]string{
		filepath.Join(dir, "a.csv"),
		filepath.Join(dir, "*.csv"),
	})
	require.NoError(t, err)
	// a.csv appears once despite matching both the literal and the glob.
	assert.Equal(t, []string{filepath.Join(dir, "a.csv"), filepath.Join(dir, "b.csv")}, paths)
}

func TestReadInput_Missing(t *testing.T) {
	_, err := ReadInput(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read file")
}

func TestResultRecordsFeedIntoSpotlight(t *testing.T) {
	csv := "user_id,month,text\n" +
		"u1,2025-09,een uitgebreide klacht over een storing\n" +
		"u2,2025-09,ok\n"

	result := newPipeline(t, nil).Run(csv)
	entries := analysis.MonthEntries(result.Records, "2025-09", 10)

	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].UserID)
}
