package report

import (
	"bytes"
	"testing"

	"scan-validator/internal/validator/engine"
	"scan-validator/internal/validator/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []engine.Result {
	return []engine.Result{
		{ArtifactID: "clean", Hash: "h1", Flags: models.Flags{HasExternalOpening: true}},
		{ArtifactID: "messy", Hash: "h2", Flags: models.Flags{ToiletGap: true, NibWalls: true}},
		{ArtifactID: "broken", Hash: "h3", Err: "invalid scan document"},
	}
}

func TestTally(t *testing.T) {
	s := Tally(sampleResults())

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 2, s.Validated)
	assert.Equal(t, 1, s.DecodeFailures)
	assert.Equal(t, 1, s.Clean)
	require.Len(t, s.Checks, len(models.Checks))

	assert.Equal(t, CheckCount{Check: models.CheckExternalOpening, Passed: 1, Failed: 1}, s.Count(models.CheckExternalOpening))
	assert.Equal(t, CheckCount{Check: models.CheckToiletGap, Passed: 1, Failed: 1}, s.Count(models.CheckToiletGap))
	assert.Equal(t, CheckCount{Check: models.CheckDoorBlocked, Passed: 2}, s.Count(models.CheckDoorBlocked))
}

func TestTallyEmpty(t *testing.T) {
	s := Tally(nil)
	assert.Zero(t, s.Total)
	assert.Len(t, s.Checks, len(models.Checks))
}

func TestWriteXLSX(t *testing.T) {
	results := sampleResults()
	data, err := WriteXLSX(Tally(results), results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, ArtifactsSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Check", "Passed", "Failed"}, summary[0])
	assert.Equal(t, []string{"external_opening", "1", "1"}, summary[1])
	assert.Equal(t, []string{"Artifacts", "3"}, summary[len(models.Checks)+2])

	rows, err := f.GetRows(ArtifactsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Artifact", rows[0][0])
	assert.Equal(t, "door_blocked", rows[0][len(rows[0])-1])

	assert.Equal(t, "clean", rows[1][0])
	assert.Equal(t, "PASS", rows[1][3])
	assert.Equal(t, "FAIL", rows[2][4])
	assert.Equal(t, []string{"broken", "h3", "invalid scan document"}, rows[3])
}
