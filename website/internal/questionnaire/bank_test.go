package questionnaire_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/website/internal/questionnaire"
)

const minimal = `{
  "id": "%s",
  "version": "1",
  "titleKey": "t",
  "descriptionKey": "d",
  "questions": [{"id": "q1", "textKey": "q1", "type": "single_choice", "required": true,
    "options": [{"id": "no", "labelKey": "no", "value": 0}, {"id": "yes", "labelKey": "yes", "value": 1}]}],
  "scoring": [{"id": "total", "method": "sum"}],
  "interpretations": [{"ruleId": "total", "min": 0, "max": 1, "severity": "any", "labelKey": "l"}]
}`

func writeQuestionnaire(t *testing.T, dir, file, id string) {
	t.Helper()
	body := []byte(fmt.Sprintf(minimal, id))
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), body, 0o600))
}

func TestBank_LoadsShippedQuestionnaires(t *testing.T) {
	bank := questionnaire.NewBank(filepath.Join("..", "..", "content", "questionnaires"), infralogger.NewNop())
	require.NoError(t, bank.Reload())

	ids := make([]string, 0, bank.Len())
	for _, q := range bank.List() {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []string{"gad7", "phq9", "pss4"}, ids)

	phq, err := bank.Get("phq9")
	require.NoError(t, err)
	assert.Len(t, phq.Questions, 9)
	assert.Equal(t, []string{"q9"}, phq.CrisisQuestionIDs)
}

func TestBank_SkipsInvalidAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeQuestionnaire(t, dir, "a.json", "alpha")
	writeQuestionnaire(t, dir, "b.json", "alpha")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	bank := questionnaire.NewBank(dir, infralogger.NewNop())
	require.NoError(t, bank.Reload())

	assert.Equal(t, 1, bank.Len())
	_, err := bank.Get("missing")
	require.ErrorIs(t, err, questionnaire.ErrNotFound)
}

func TestBank_KeepsPreviousOnFailure(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "bank")
	require.NoError(t, os.Mkdir(dir, 0o750))
	writeQuestionnaire(t, dir, "a.json", "alpha")

	bank := questionnaire.NewBank(dir, infralogger.NewNop())
	require.NoError(t, bank.Reload())
	require.NoError(t, os.RemoveAll(dir))

	require.Error(t, bank.Reload())
	_, err := bank.Get("alpha")
	assert.NoError(t, err)
}

func TestBank_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	writeQuestionnaire(t, dir, "a.json", "alpha")

	bank := questionnaire.NewBank(dir, infralogger.NewNop())
	require.NoError(t, bank.Reload())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- bank.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeQuestionnaire(t, dir, "b.json", "beta")

	require.Eventually(t, func() bool { return bank.Len() == 2 }, 5*time.Second, 50*time.Millisecond)
}
