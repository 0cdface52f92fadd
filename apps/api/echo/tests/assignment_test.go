package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/grade"
	"github.com/trezcool/darasa/core/team"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_assignmentApi(t *testing.T) {
	guild := int64(501)
	student := getToken(t, guild, 1, false)
	instructor := getToken(t, guild, 9, true)

	newBody := func(name, dueDate string) []byte {
		return marchallObj(t, assignment.NewAssignment{
			Name:         name,
			Points:       100,
			DueDate:      dueDate,
			Instructions: "see the course page",
		})
	}

	tests := []httpTest{
		{
			name: "Create (instructor required)", method: http.MethodPost, path: "/v1/assignments", token: student,
			body: newBody("Essay", "12/01/2026 23:59"), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Create (bad due date)", method: http.MethodPost, path: "/v1/assignments", token: instructor,
			body: newBody("Essay", "next friday"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"due_date": assignment.ErrInvalidDueDate.Error()}),
		},
		{
			name: "Create", method: http.MethodPost, path: "/v1/assignments", token: instructor,
			body: newBody("Essay", "12/01/2026 23:59"), wantCode: http.StatusCreated,
			extra: func(t *testing.T, body []byte) {
				var a assignment.Assignment
				if err := json.Unmarshal(body, &a); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if a.Name != "Essay" || a.NameLowercase != "essay" || a.PeerReview {
					t.Errorf("unexpected assignment: %+v", a)
				}
				want := time.Date(2026, 12, 1, 23, 59, 0, 0, time.UTC)
				if !a.DueDate.Equal(want) {
					t.Errorf("due date = %v, want %v", a.DueDate, want)
				}
			},
		},
		{
			name: "Create (duplicate)", method: http.MethodPost, path: "/v1/assignments", token: instructor,
			body: newBody("essay", "12/01/2026 23:59"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": assignment.ErrAssignmentExists.Error()}),
		},
		{
			name: "Retrieve (case-insensitive)", method: http.MethodGet, path: "/v1/assignments/ESSAY", token: student,
			wantCode: http.StatusOK,
		},
		{
			name: "Retrieve (unknown)", method: http.MethodGet, path: "/v1/assignments/nope", token: student,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: assignment.ErrNotFound.Error()}),
		},
		{
			name: "Toggle peer review", method: http.MethodPost, path: "/v1/assignments/essay/peer-review", token: instructor,
			body: marchallObj(t, map[string]bool{"peer_review": true}), wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var a assignment.Assignment
				if err := json.Unmarshal(body, &a); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if !a.PeerReview {
					t.Error("peer review was not enabled")
				}
			},
		},
		{
			name: "Delete", method: http.MethodDelete, path: "/v1/assignments/essay", token: instructor,
			wantCode: http.StatusNoContent,
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

func Test_gradeApi(t *testing.T) {
	guild := int64(502)
	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Minute)
	testutil.CreateAssignment(t, assignRepo, guild, "Project", 100, due, true)
	testutil.CreateTeam(t, teamRepo, guild, "Alpha", 1)
	testutil.CreateTeam(t, teamRepo, guild, "Beta", 2)
	if err := teamRepo.SetPeerReview(guild, "alpha", []string{"Beta"}); err != nil {
		t.Fatalf("SetPeerReview(): %v", err)
	}

	student := getToken(t, guild, 1, false)
	instructor := getToken(t, guild, 9, true)

	tests := []httpTest{
		{
			name: "Not assigned", method: http.MethodPost, path: "/v1/grades", token: getToken(t, guild, 2, false),
			body:     marchallObj(t, grade.NewGrade{Assignment: "Project", Team: "Alpha", Points: 50}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: grade.ErrNotAssigned.Error()}),
		},
		{
			name: "Points exceed possible", method: http.MethodPost, path: "/v1/grades", token: student,
			body:     marchallObj(t, grade.NewGrade{Assignment: "Project", Team: "Beta", Points: 200}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"points": "points cannot exceed the assignment's points possible"}),
		},
		{
			name: "Unknown team", method: http.MethodPost, path: "/v1/grades", token: student,
			body:     marchallObj(t, grade.NewGrade{Assignment: "Project", Team: "Delta", Points: 50}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: team.ErrNotFound.Error()}),
		},
		{
			name: "Student grade", method: http.MethodPost, path: "/v1/grades", token: student,
			body:     marchallObj(t, grade.NewGrade{Assignment: "project", Team: "beta", Points: 85}),
			wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var g grade.Grade
				if err := json.Unmarshal(body, &g); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if g.Reviewer != "Alpha" || g.Team != "Beta" || g.Points != 85 {
					t.Errorf("unexpected grade: %+v", g)
				}
			},
		},
		{
			name: "Instructor grade (reviewer required)", method: http.MethodPost, path: "/v1/grades", token: instructor,
			body:     marchallObj(t, grade.NewGrade{Assignment: "Project", Team: "Alpha", Points: 70}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: grade.ErrMissingReviewer.Error()}),
		},
		{
			name: "Instructor grade", method: http.MethodPost, path: "/v1/grades", token: instructor,
			body:     marchallObj(t, grade.NewGrade{Assignment: "Project", Team: "Alpha", Reviewer: "Beta", Points: 70}),
			wantCode: http.StatusOK,
		},
		{
			name: "Query grades (instructor required)", method: http.MethodGet, path: "/v1/grades/project", token: student,
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Query grades", method: http.MethodGet, path: "/v1/grades/project", token: instructor,
			wantCode: http.StatusOK,
			extra: func(t *testing.T, body []byte) {
				var grades []grade.Grade
				if err := json.Unmarshal(body, &grades); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if len(grades) != 2 {
					t.Errorf("got %d grades, want 2", len(grades))
				}
			},
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
