package models

import (
	"encoding/json"
	"fmt"
)

// CasesResponse представляет ответ API coronavirus.data.gov.uk.
type CasesResponse struct {
	Body []CaseRecord   `json:"body"`
	Raw  json.RawMessage `json:"-"`
}

// CaseRecord содержит число новых случаев за дату публикации.
type CaseRecord struct {
	Date                  string `json:"date"`
	AreaCode              string `json:"areaCode"`
	NewCasesByPublishDate *int   `json:"newCasesByPublishDate"`
}

// LatestNewCases возвращает число новых случаев из самой свежей записи (первой в теле ответа).
func (c *CasesResponse) LatestNewCases() (int, error) {
	if c == nil || len(c.Body) == 0 {
		return 0, fmt.Errorf("%w: case records missing", ErrMalformed)
	}
	if c.Body[0].NewCasesByPublishDate == nil {
		return 0, fmt.Errorf("%w: newCasesByPublishDate missing", ErrMalformed)
	}
	return *c.Body[0].NewCasesByPublishDate, nil
}
