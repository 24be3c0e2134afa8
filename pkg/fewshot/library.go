// Package fewshot holds the worked question/SQL exemplar library and
// selects the examples most similar to an incoming query.
package fewshot

// Example is a worked question/SQL pair included in prompts to steer
// output structure. The library is append-only at development time and
// immutable at runtime.
type Example struct {
	Question    string   `json:"question"`
	SQL         string   `json:"sql"`
	Tables      []string `json:"tables,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// Library returns the fixed exemplar library.
func Library() []Example {
	return library
}

var library = []Example{
	{
		Question: "고혈압 환자의 남녀 성별 분포를 알려주세요",
		SQL: `SELECT
    ip.gender AS ` + "`성별`" + `,
    COUNT(DISTINCT bt.user_id) AS ` + "`환자수`" + `
FROM basic_treatment bt
JOIN insured_person ip ON bt.user_id = ip.user_id
WHERE bt.deleted = FALSE
    AND bt.res_disease_code LIKE 'AI1%'
GROUP BY ip.gender
ORDER BY ` + "`환자수`" + ` DESC`,
		Tables: []string{"basic_treatment", "insured_person"},
	},
	{
		Question: "당뇨병 환자에게 가장 많이 처방된 약물 TOP 5",
		SQL: `SELECT
    pd.res_drug_name AS ` + "`약물명`" + `,
    COUNT(*) AS ` + "`처방횟수`" + `
FROM basic_treatment bt
JOIN prescribed_drug pd
    ON bt.user_id = pd.user_id
    AND bt.res_treat_start_date = pd.res_treat_start_date
WHERE bt.deleted = FALSE
    AND pd.deleted = FALSE
    AND bt.res_disease_code LIKE 'AE1%'
GROUP BY pd.res_drug_name
ORDER BY ` + "`처방횟수`" + ` DESC
LIMIT 5`,
		Tables: []string{"basic_treatment", "prescribed_drug"},
	},
	{
		Question: "서울 지역 병원에서 치료받은 암 환자 수",
		SQL: `SELECT
    COUNT(DISTINCT user_id) AS ` + "`환자수`" + `
FROM basic_treatment
WHERE deleted = FALSE
    AND res_disease_code LIKE 'AC%'
    AND res_hospital_name LIKE '%서울%'`,
		Tables: []string{"basic_treatment"},
	},
	{
		Question: "최근 1년간 조현병으로 치료받은 환자 수",
		SQL: `SELECT
    COUNT(DISTINCT user_id) AS ` + "`환자수`" + `
FROM basic_treatment
WHERE deleted = FALSE
    AND res_disease_code LIKE 'AF2%'
    AND TRY_TO_DATE(res_treat_start_date, 'yyyyMMdd') >= DATE_SUB(CURRENT_DATE, 365)`,
		Tables: []string{"basic_treatment"},
	},
	{
		Question: "20대 여성 비만 환자에게 가장 많이 처방된 약물 TOP 10",
		SQL: `SELECT
    pd.res_drug_name AS ` + "`약물명`" + `,
    COUNT(*) AS ` + "`처방횟수`" + `
FROM basic_treatment bt
JOIN insured_person ip ON bt.user_id = ip.user_id
JOIN prescribed_drug pd ON bt.user_id = pd.user_id AND bt.res_treat_start_date = pd.res_treat_start_date
WHERE bt.deleted = FALSE
    AND pd.deleted = FALSE
    AND ip.gender = 'WOMAN'
    AND YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) BETWEEN 20 AND 29
    AND bt.res_disease_code LIKE 'AE66%'
GROUP BY pd.res_drug_name
ORDER BY ` + "`처방횟수`" + ` DESC
LIMIT 10`,
		Tables: []string{"basic_treatment", "insured_person", "prescribed_drug"},
	},
	{
		Question: "서울 지역 65세 이상 환자의 평균 처방 약품 수",
		SQL: `SELECT
    AVG(drug_count) AS ` + "`평균 처방 약품 수`" + `
FROM (
    SELECT
        bt.user_id,
        COUNT(DISTINCT pd.res_drug_name) AS drug_count
    FROM basic_treatment bt
    JOIN insured_person ip ON bt.user_id = ip.user_id
    LEFT JOIN prescribed_drug pd
        ON bt.user_id = pd.user_id
        AND bt.res_treat_start_date = pd.res_treat_start_date
    WHERE bt.res_hospital_name LIKE '%서울%'
        AND YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) >= 65
        AND bt.deleted = FALSE
        AND pd.deleted = FALSE
    GROUP BY bt.user_id
) AS subquery`,
		Tables: []string{"basic_treatment", "insured_person", "prescribed_drug"},
	},
	{
		Question: "각 질병별로 환자 수 순위를 매겨줘 (RANK 사용)",
		SQL: `SELECT
    res_disease_name AS ` + "`질병명`" + `,
    patient_count AS ` + "`환자수`" + `,
    RANK() OVER (ORDER BY patient_count DESC) AS ` + "`순위`" + `
FROM (
    SELECT
        res_disease_name,
        COUNT(DISTINCT user_id) AS patient_count
    FROM basic_treatment
    WHERE deleted = FALSE
    GROUP BY res_disease_name
) AS disease_counts
ORDER BY ` + "`순위`" + `
LIMIT 100`,
		Tables: []string{"basic_treatment"},
	},
	{
		Question: "연령대별 환자 수를 계산하고 누적 합계도 표시해줘",
		SQL: `WITH AgeGroupCounts AS (
    SELECT
        CASE
            WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 30 THEN '20대 이하'
            WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 40 THEN '30대'
            WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 50 THEN '40대'
            WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 60 THEN '50대'
            ELSE '60대 이상'
        END AS age_group,
        COUNT(DISTINCT bt.user_id) AS patient_count
    FROM basic_treatment bt
    JOIN insured_person ip ON bt.user_id = ip.user_id
    WHERE bt.deleted = FALSE
        AND TRY_TO_DATE(ip.birthday, 'yyyyMMdd') IS NOT NULL
    GROUP BY age_group
)
SELECT
    age_group AS ` + "`연령대`" + `,
    patient_count AS ` + "`환자수`" + `,
    SUM(patient_count) OVER (ORDER BY age_group) AS ` + "`누적 합계`" + `
FROM AgeGroupCounts
ORDER BY age_group`,
		Tables: []string{"basic_treatment", "insured_person"},
	},
	{
		Question: "성별, 연령대별 환자 수를 교차 집계해줘",
		SQL: `SELECT
    ip.gender AS ` + "`성별`" + `,
    CASE
        WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 30 THEN '20대 이하'
        WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 40 THEN '30대'
        WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 50 THEN '40대'
        WHEN YEAR(CURRENT_DATE) - YEAR(TRY_TO_DATE(ip.birthday, 'yyyyMMdd')) < 60 THEN '50대'
        ELSE '60대 이상'
    END AS ` + "`연령대`" + `,
    COUNT(DISTINCT bt.user_id) AS ` + "`환자수`" + `
FROM basic_treatment bt
JOIN insured_person ip ON bt.user_id = ip.user_id
WHERE bt.deleted = FALSE
    AND TRY_TO_DATE(ip.birthday, 'yyyyMMdd') IS NOT NULL
GROUP BY ip.gender, ` + "`연령대`" + `
ORDER BY ip.gender, ` + "`연령대`" + ``,
		Tables: []string{"basic_treatment", "insured_person"},
	},
	{
		Question: "2023년 1월부터 12월까지 진료받은 환자 수는?",
		SQL: `SELECT
    COUNT(DISTINCT user_id) AS ` + "`환자수`" + `
FROM basic_treatment
WHERE deleted = FALSE
    AND TRY_TO_DATE(res_treat_start_date, 'yyyyMMdd')
        BETWEEN TRY_TO_DATE('20230101', 'yyyyMMdd')
        AND TRY_TO_DATE('20231231', 'yyyyMMdd')`,
		Tables: []string{"basic_treatment"},
	},
}
