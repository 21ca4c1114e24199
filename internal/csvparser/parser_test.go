package csvparser

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/chem-inventory-rdf/internal/config"
	"github.com/ginjaninja78/chem-inventory-rdf/internal/types"
)

const header = "NAME;FORMULA;ALTERNATIVE_NAME;ANOTHER_NAME;OSTATOK;KOMNATA;SHKAFF;POLKA;KOMENT;CAS;Smiles\n"

func defaults() config.CSVSettings {
	return config.Default().CSV
}

func TestParse(t *testing.T) {
	input := header +
		"Ethanol;C2H6O;;;1 l;101;A;2;;64-17-5;CCO\n" +
		"\n" +
		"Benzene;C6H6;Бензол;; 500 ml ;101;B;1;toxic;71-43-2;c1ccccc1\n"

	rows, err := Parse(strings.NewReader(input), defaults())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Ethanol", rows[0].Name())
	assert.Equal(t, "CCO", rows[0].SMILES())
	assert.Equal(t, "64-17-5", rows[0].CAS())
	assert.Equal(t, 2, rows[0].Line)

	assert.Equal(t, "Бензол", rows[1].Get("alternative_name"))
	assert.Equal(t, " 500 ml ", rows[1].Fields[types.ColOstatok], "values are not trimmed")
	assert.Equal(t, 4, rows[1].Line)
}

func TestParse_HeaderOnly(t *testing.T) {
	rows, err := Parse(strings.NewReader(header), defaults())
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = Parse(strings.NewReader(""), defaults())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParse_Quoting(t *testing.T) {
	input := header +
		`"Acid; strong";H2SO4;;;;;;;"line one` + "\n" + `line two";7664-93-9;OS(=O)(=O)O` + "\n" +
		`Name "quoted" here;;;;;;;;;;C` + "\n"

	rows, err := Parse(strings.NewReader(input), defaults())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Acid; strong", rows[0].Name())
	assert.Equal(t, "line one\nline two", rows[0].Fields[types.ColKoment])
	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, `Name "quoted" here`, rows[1].Name())
	assert.Equal(t, 4, rows[1].Line)
}

func TestParse_KeepsDelimiterOnlyRecords(t *testing.T) {
	input := header + "A;;;;;;;;;;C\n" + ";;;;;;;;;;\n" + " ; ; ; ; ; ; ; ; ; ; \n" + "\n" + "   \n" + "X;;;;;;;;;;C1CC\n"

	rows, err := Parse(strings.NewReader(input), defaults())
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "A", rows[0].Name())
	assert.Equal(t, "", rows[1].SMILES())
	assert.Equal(t, 3, rows[1].Line)
	assert.Equal(t, " ", rows[2].Name(), "values are not trimmed")
	assert.Equal(t, "X", rows[3].Name())
	assert.Equal(t, 7, rows[3].Line)
}

func TestParse_TrailingDelimiter(t *testing.T) {
	input := header + "X;;;;;;;;;;C;\n"

	rows, err := Parse(strings.NewReader(input), defaults())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C", rows[0].SMILES())
}

func TestParse_SchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		fields int
	}{
		{"too few", header + "X;;;C\n", 2, 4},
		{"too many", header + "X;;;;;;;;;;C;extra\n", 2, 12},
		{"later line", header + "X;;;;;;;;;;C\nY;C\n", 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), defaults())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchema))

			var serr *SchemaError
			require.True(t, errors.As(err, &serr))
			assert.Equal(t, tt.line, serr.Line)
			assert.Equal(t, tt.fields, serr.Fields)
		})
	}
}

func TestParse_StrictHeader(t *testing.T) {
	settings := defaults()
	settings.StrictHeader = true

	lower := strings.ToLower(header) + "X;;;;;;;;;;C\n"
	rows, err := Parse(strings.NewReader(lower), settings)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	wrong := strings.Replace(header, "CAS", "REG", 1) + "X;;;;;;;;;;C\n"
	_, err = Parse(strings.NewReader(wrong), settings)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSchema))
	assert.Contains(t, err.Error(), `"REG"`)

	// Without strict mode the header content is ignored.
	rows, err = Parse(strings.NewReader(wrong), defaults())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestParse_Delimiter(t *testing.T) {
	settings := defaults()
	settings.Delimiter = "comma"

	input := strings.ReplaceAll(header, ";", ",") + "X,,,,,,,,,,C\n"
	rows, err := Parse(strings.NewReader(input), settings)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "C", rows[0].SMILES())
}

func TestParse_Encodings(t *testing.T) {
	text := header + "Ацетон;C3H6O;;;;;;;;67-64-1;CC(C)=O\n"

	cp1251, err := charmap.Windows1251.NewEncoder().String(text)
	require.NoError(t, err)
	koi8, err := charmap.KOI8R.NewEncoder().String(text)
	require.NoError(t, err)

	tests := []struct {
		name     string
		encoding string
		input    string
	}{
		{"utf-8", "utf-8", text},
		{"utf-8 with bom", "utf-8", "\ufeff" + text},
		{"windows-1251", "windows-1251", cp1251},
		{"koi8-r", "koi8-r", koi8},
		{"auto utf-8", "auto", "\ufeff" + text},
		{"auto windows-1251", "auto", cp1251},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := defaults()
			settings.Encoding = tt.encoding
			settings.StrictHeader = true

			rows, err := Parse(strings.NewReader(tt.input), settings)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, "Ацетон", rows[0].Name())
		})
	}
}

func TestDecode_Unsupported(t *testing.T) {
	_, err := Decode([]byte("x"), "ebcdic")
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "inventory")
	require.NoError(t, os.WriteFile(base+".csv", []byte(header+"X;;;;;;;;;;C\n"), 0o644))

	rows, err := Load(base, defaults())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "foo"), defaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFileAccess))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
