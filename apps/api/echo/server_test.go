package echoapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/coursedetail"
	"github.com/trezcool/darasa/core/discussion"
	"github.com/trezcool/darasa/core/enrollment"
	"github.com/trezcool/darasa/core/feedback"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
)

const testSecret = "t3st-s3cr3t"

type testApp struct {
	server      *Server
	tokens      *auth.TokenService
	users       user.Repository
	courses     course.Repository
	details     coursedetail.Repository
	enrollments enrollment.Repository
	feedback    feedback.Repository
	discussion  discussion.Repository
}

func testConfig() *core.Config {
	return &core.Config{
		Env:      core.EnvTest,
		TestMode: true,
		AppName:  "Darasa",
		Auth:     core.AuthConfig{Secret: testSecret, TokenTTL: time.Hour},
		Server:   core.ServerConfig{CORSOrigins: []string{"*"}},
	}
}

func setup(t *testing.T) testApp {
	t.Helper()
	conf := testConfig()

	tokens, err := auth.NewTokenService([]byte(conf.Auth.Secret), conf.Auth.TokenTTL, conf.AppName)
	require.NoError(t, err)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.RegisterValidators(validate, translator)

	db := inmemdb.Open()
	app := testApp{
		tokens:      tokens,
		users:       inmemdb.NewUserRepository(db),
		courses:     inmemdb.NewCourseRepository(db),
		details:     inmemdb.NewCourseDetailRepository(db),
		enrollments: inmemdb.NewEnrollmentRepository(db),
		feedback:    inmemdb.NewFeedbackRepository(db),
		discussion:  inmemdb.NewDiscussionRepository(db),
	}

	userSvc := user.NewService(app.users)
	courseSvc := course.NewService(app.courses, userSvc)
	app.server = NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logsvc.NewRollbarLogger(io.Discard, conf),
		Tokens:         tokens,
		UserSvc:        userSvc,
		CourseSvc:      courseSvc,
		DetailSvc:      coursedetail.NewService(app.details, courseSvc),
		EnrollmentSvc:  enrollment.NewService(app.enrollments, userSvc, courseSvc),
		FeedbackSvc:    feedback.NewService(app.feedback, courseSvc),
		DiscussionSvc:  discussion.NewService(app.discussion, courseSvc),
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return app
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (app testApp) do(method, path, token string, body []byte) *httptest.ResponseRecorder {
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(tt.method, tt.path, tt.token, tt.body)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func getToken(t *testing.T, app testApp, usr user.User) string {
	t.Helper()
	token, err := app.tokens.Issue(usr.Identity())
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

// okData is the envelope of a successful response carrying data.
func okData(t *testing.T, data interface{}) []byte {
	return marshalObj(t, response{Success: true, Data: data})
}

func okMsg(t *testing.T, msg string) []byte {
	return marshalObj(t, response{Success: true, Message: msg})
}

func errMsg(t *testing.T, msg string, fields ...map[string]string) []byte {
	resp := response{Message: msg}
	if len(fields) > 0 {
		resp.Errors = fields[0]
	}
	return marshalObj(t, resp)
}

// decode returns the data of a successful response.
func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) {
	t.Helper()
	var resp struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.True(t, resp.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, data))
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func TestServer_home(t *testing.T) {
	app := setup(t)
	app.run(t, []httpTest{
		{name: "home", path: "/", wantCode: http.StatusOK, wantData: okMsg(t, "Welcome to Darasa API!")},
		{name: "unknown route", path: "/api/nope", wantCode: http.StatusNotFound, wantData: errMsg(t, "Not Found")},
	})
}
