package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/course"
)

func Test_courseApi(t *testing.T) {
	guild := int64(701)
	student := getToken(t, guild, 1, false)
	instructor := getToken(t, guild, 9, true)

	newCourse := course.NewCourse{
		Name:         "Software Engineering",
		Abbreviation: "CS",
		Section:      "001",
		Semester:     "Fall 2026",
		CRN:          "12345",
	}

	tests := []httpTest{
		{
			name: "Instructor required", method: http.MethodGet, path: "/v1/course", token: student,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Retrieve (none yet)", method: http.MethodGet, path: "/v1/course", token: instructor,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
		{
			name: "Create (required fields)", method: http.MethodPost, path: "/v1/course", token: instructor,
			body: marchallObj(t, course.NewCourse{Name: "Software Engineering"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"course_abbreviation": "this field is required",
				"course_section":      "this field is required",
				"semester":            "this field is required",
				"crn":                 "this field is required",
			}),
		},
		{
			name: "Create", method: http.MethodPost, path: "/v1/course", token: instructor,
			body: marchallObj(t, newCourse), wantCode: http.StatusCreated,
			extra: func(t *testing.T, body []byte) {
				var c course.Course
				if err := json.Unmarshal(body, &c); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if c.Name != "Software Engineering" || c.CRN != "12345" || c.GuildID != guild || c.UserID != 9 {
					t.Errorf("unexpected course: %+v", c)
				}
			},
		},
		{
			name: "Create (already exists)", method: http.MethodPost, path: "/v1/course", token: instructor,
			body: marchallObj(t, newCourse), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: course.ErrCourseExists.Error()}),
		},
		{
			name: "Update", method: http.MethodPut, path: "/v1/course", token: instructor,
			body: marchallObj(t, course.UpdateCourse{Semester: "Spring 2027"}), wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var c course.Course
				if err := json.Unmarshal(body, &c); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if c.Semester != "Spring 2027" || c.Name != "Software Engineering" {
					t.Errorf("unexpected course after update: %+v", c)
				}
			},
		},
		{
			name: "Delete", method: http.MethodDelete, path: "/v1/course", token: instructor,
			wantCode: http.StatusNoContent,
		},
		{
			name: "Retrieve (deleted)", method: http.MethodGet, path: "/v1/course", token: instructor,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: course.ErrNotFound.Error()}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
			}
			if check, ok := tt.extra.(func(*testing.T, []byte)); ok {
				check(t, rec.Body.Bytes())
			}
		})
	}
}
