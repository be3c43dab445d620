package allocator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-seating-api/internal/models"
)

func TestNormalizeFuzzyHeaders(t *testing.T) {
	src := Source{Name: "cse.csv", Text: "Student Name,Roll No,Branch,Mobile No.\n" +
		"Asha Rao,21CS001,CSE,9876500001\n" +
		"Vikram, 21CS002 ,CSE,\n"}

	students, err := NewNormalizer(nil).Normalize([]Source{src})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, models.Student{Name: "Asha Rao", ID: "21CS001", Group: "CSE", Contact: "9876500001"}, students[0])
	assert.Equal(t, "21CS002", students[1].ID)
	assert.Empty(t, students[1].Contact)
}

func TestNormalizeHeaderVariants(t *testing.T) {
	cases := map[string]string{
		"comma":      "name,id,group\nA,1,X\n",
		"semicolon":  "NAME;Hall Ticket Number;Department\nA;1;X\n",
		"tab":        "Full Name\tREG_NO\tDept\nA\t1\tX\n",
		"pipe":       "Candidate Name|HT No|Stream\nA|1|X\n",
		"accented":   "Nómbre Student,Roll Number,Brânch\nA,1,X\n",
		"bom":        "\ufeffName,ID,Group\nA,1,X\n",
		"blank-lead": "\n\nName,Roll No,Branch\nA,1,X\n",
		"blank-semi": "\nName;Roll No;Branch\nA;1;X\n",
		"blank-tab":  "\r\n  \r\nName\tRoll No\tBranch\r\nA\t1\tX\r\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			students, err := NewNormalizer(nil).Normalize([]Source{{Name: name, Text: text}})
			require.NoError(t, err)
			require.Len(t, students, 1)
			assert.Equal(t, "A", students[0].Name)
			assert.Equal(t, "1", students[0].ID)
			assert.Equal(t, "X", students[0].Group)
		})
	}
}

func TestNormalizeMissingRequiredHeader(t *testing.T) {
	_, err := NewNormalizer(nil).Normalize([]Source{{Name: "bad.csv", Text: "Student Name,Branch\nA,X\n"}})

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, FieldID, schemaErr.Field)
	assert.Equal(t, "bad.csv", schemaErr.Source)
}

func TestNormalizeDropsIncompleteRows(t *testing.T) {
	text := "Name,Roll No,Branch,Phone\n" +
		"A,1,X,\n" +
		",2,X,555\n" +
		"C,,Y,\n" +
		",,,\n" +
		"E,5,,\n"
	students, err := NewNormalizer(nil).Normalize([]Source{{Text: text}})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "1", students[0].ID)
	assert.Equal(t, "5", students[1].ID)
	assert.Empty(t, students[1].Group)
}

func TestNormalizeConcatenatesSourcesInOrder(t *testing.T) {
	sources := []Source{
		{Name: "cse", Text: "Name,Roll No,Branch\nA,1,CSE\nB,2,CSE\n"},
		{Name: "ece", Text: "Roll No,Name,Branch\n3,C,ECE\n"},
	}
	students, err := NewNormalizer(nil).Normalize(sources)
	require.NoError(t, err)
	ids := []string{students[0].ID, students[1].ID, students[2].ID}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestNormalizeNoRecords(t *testing.T) {
	_, err := NewNormalizer(nil).Normalize([]Source{{Text: "Name,Roll No,Branch\n,,\n"}})
	var noRecords *NoRecordsError
	require.True(t, errors.As(err, &noRecords))
}

func TestNormalizeDuplicateAcrossSources(t *testing.T) {
	sources := []Source{
		{Text: "Name,Roll No,Branch\nA,ht01,CSE\n"},
		{Text: "Name,Roll No,Branch\nB,HT01,ECE\n"},
	}
	_, err := NewNormalizer(nil).Normalize(sources)
	var dupErr *DuplicateIDError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "HT01", dupErr.ID)
}

func TestNormalizeRecords(t *testing.T) {
	records := []models.Student{
		{Name: " A ", ID: " 1 ", Group: " CSE "},
		{Name: "", ID: "2", Group: "CSE"},
		{Name: "C", ID: "3"},
	}
	students, err := NewNormalizer(nil).NormalizeRecords(records)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, models.Student{Name: "A", ID: "1", Group: "CSE"}, students[0])
}

func TestNormalizeCustomRules(t *testing.T) {
	rules := []HeaderRule{
		{Field: FieldName, Required: true, Synonyms: []string{"nom"}},
		{Field: FieldID, Required: true, Synonyms: []string{"matricule"}},
		{Field: FieldGroup, Required: true, Synonyms: []string{"filiere"}},
	}
	students, err := NewNormalizer(rules).Normalize([]Source{{Text: "Nom,Matricule,Filière\nA,1,X\n"}})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "X", students[0].Group)
}

func TestFoldHeader(t *testing.T) {
	assert.Equal(t, "rollno", foldHeader(" Roll No. "))
	assert.Equal(t, "rollno", foldHeader("ROLL_NO"))
	assert.Equal(t, "branch", foldHeader("Brânch"))
}
