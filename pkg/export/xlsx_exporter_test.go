package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Nama", "Minggu, 05/01"},
		Rows: []map[string]string{
			{"Nama": "Andi", "Minggu, 05/01": "H"},
			{"Nama": "Budi", "Minggu, 05/01": "S"},
		},
	}

	payload, err := NewXLSXExporter().Render(data, "Absensi 05/01-11/01")
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	sheet := file.GetSheetName(0)
	assert.Equal(t, "Absensi 0501-1101", sheet)
	rows, err := file.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nama", "Minggu, 05/01"}, rows[0])
	assert.Equal(t, []string{"Budi", "S"}, rows[2])
}

func TestXLSXExporterRequiresHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestSheetNameTruncates(t *testing.T) {
	assert.Len(t, []rune(sheetName("Rekap absensi karyawan gudang mingguan")), 31)
	assert.Equal(t, "", sheetName(""))
}
