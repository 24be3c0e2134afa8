package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCatalogCSV = "\ufeff" + `table_name,column_name,localized_name,description,data_type,nullable,keywords,category,importance
basic_treatment,person_id,개인ID,환자 고유 식별자,string,N,환자 식별자,treatment,high
basic_treatment,res_disease_name,질병명,진단받은 질병의 한글 명칭,string,Y,질병 질환 진단,treatment,high
basic_treatment,res_treat_date,진료일자,진료를 받은 날짜,date,Y,진료일 날짜 기간,treatment,high
prescribed_drug,drug_name,약품명,처방된 약품의 한글 명칭,string,Y,약 약품 처방,prescription,high
prescribed_drug,ingredient_name,성분명,약품의 주성분 명칭,string,Y,성분 주성분,prescription,high
insured_person,gender,성별,가입자 성별,string,Y,성별 남성 여성,person,high
insured_person,age,연령,가입자 나이,int,Y,나이 연령 연령대,person,high
insured_person,region,지역,거주 지역,string,Y,지역 거주지,person,high
health_checkup,bmi,체질량지수,검진 시 측정한 BMI,double,Y,비만 체중,checkup,low
health_checkup,blood_sugar,혈당,공복 혈당 수치,double,Y,혈당 당뇨,checkup,medium
`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogCSV), 0o644))
	return path
}

func loadTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadCatalog(writeTestCatalog(t), zap.NewNop())
	require.NoError(t, err)
	return cat
}

func TestLoadCatalogToleratesBOM(t *testing.T) {
	cat := loadTestCatalog(t)
	require.Len(t, cat.Columns(), 10)

	// The BOM must not leak into the first table name.
	assert.Equal(t, "basic_treatment", cat.Columns()[0].TableName)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.csv"), zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema catalog not found")
}

func TestLoadCatalogRejectsWrongHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c,d,e,f,g,h,i\n"), 0o644))

	_, err := LoadCatalog(path, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected header field")
}

func TestParseNullable(t *testing.T) {
	for _, v := range []string{"Y", "yes", "TRUE", "1", "예"} {
		assert.True(t, parseNullable(v), v)
	}
	for _, v := range []string{"N", "no", "false", "0", ""} {
		assert.False(t, parseNullable(v), v)
	}
}

func TestTableColumnsCaseInsensitive(t *testing.T) {
	cat := loadTestCatalog(t)

	cols := cat.TableColumns("BASIC_TREATMENT")
	require.Len(t, cols, 3)
	for _, c := range cols {
		assert.Equal(t, "basic_treatment", c.TableName)
	}
}

func TestTableListSorted(t *testing.T) {
	cat := loadTestCatalog(t)
	assert.Equal(t,
		[]string{"basic_treatment", "health_checkup", "insured_person", "prescribed_drug"},
		cat.TableList())
}

func TestColumnCounts(t *testing.T) {
	cat := loadTestCatalog(t)
	counts := cat.ColumnCounts()
	assert.Equal(t, 3, counts["basic_treatment"])
	assert.Equal(t, 2, counts["health_checkup"])
}
