package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sagarc03/signet"
	signethttp "github.com/sagarc03/signet/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return string(hash)
}

// MockPresignService is a mock implementation of http.PresignService.
type MockPresignService struct {
	mock.Mock
}

func (m *MockPresignService) PresignGet(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PresignedURL, error) {
	args := m.Called(ctx, creds, req)
	return args.Get(0).(signet.PresignedURL), args.Error(1)
}

func (m *MockPresignService) PresignPut(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PresignedURL, error) {
	args := m.Called(ctx, creds, req)
	return args.Get(0).(signet.PresignedURL), args.Error(1)
}

func (m *MockPresignService) PresignDelete(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PresignedURL, error) {
	args := m.Called(ctx, creds, req)
	return args.Get(0).(signet.PresignedURL), args.Error(1)
}

func (m *MockPresignService) PresignPost(ctx context.Context, creds signet.StorageCredentials, req signet.PresignRequest) (signet.PostPolicy, error) {
	args := m.Called(ctx, creds, req)
	return args.Get(0).(signet.PostPolicy), args.Error(1)
}

// MockListService is a mock implementation of http.ListService.
type MockListService struct {
	mock.Mock
}

func (m *MockListService) List(ctx context.Context, creds signet.StorageCredentials, bucket, prefix string) (signet.BucketListing, error) {
	args := m.Called(ctx, creds, bucket, prefix)
	return args.Get(0).(signet.BucketListing), args.Error(1)
}

// MockSessionService is a mock implementation of http.SessionService.
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) GetSessionToken(ctx context.Context, req signet.SessionTokenRequest) (signet.TempCredentials, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(signet.TempCredentials), args.Error(1)
}

// MockWasabiService is a mock implementation of http.WasabiService.
type MockWasabiService struct {
	mock.Mock
}

func (m *MockWasabiService) GetTempCredentials(ctx context.Context, req signet.TempCredentialRequest) (signet.TempCredentials, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(signet.TempCredentials), args.Error(1)
}

type testFixture struct {
	handler *signethttp.Handler
	presign *MockPresignService
	lister  *MockListService
	session *MockSessionService
	wasabi  *MockWasabiService
	issuer  *signet.TokenIssuer
}

func newFixture(t *testing.T, mode signet.AuthMode, credCfg signethttp.CredentialConfig) *testFixture {
	t.Helper()

	account := signet.Account{Username: "testuser", PasswordHash: mustHash(t, "testpass")}
	tokenCfg := signet.TokenConfig{Secret: "test-secret", TokenTTL: time.Hour}
	issuer := signet.NewTokenIssuer(account, tokenCfg)

	var verifier *signet.TokenVerifier
	if mode == signet.ModePassword {
		verifier = signet.NewTokenVerifier(account, tokenCfg)
	}

	auth, err := signet.NewAuthenticator(mode, issuer)
	assert.NoError(t, err)

	presign := new(MockPresignService)
	lister := new(MockListService)
	session := new(MockSessionService)
	wasabi := new(MockWasabiService)

	handler, err := signethttp.NewHandler(
		&signethttp.HandlerConfig{Mode: mode, Credentials: credCfg},
		auth, verifier, presign, lister, session, wasabi,
	)
	assert.NoError(t, err)

	return &testFixture{handler: handler, presign: presign, lister: lister, session: session, wasabi: wasabi, issuer: issuer}
}

func (f *testFixture) bearerToken(t *testing.T) string {
	t.Helper()
	token, err := f.issuer.Issue("testuser", "testpass")
	assert.NoError(t, err)
	return token.AccessToken
}

func setCredentialHeaders(req *http.Request) {
	req.Header.Set(signethttp.HeaderAccessKey, "AKIATEST")
	req.Header.Set(signethttp.HeaderSecretKey, "testsecret")
	req.Header.Set(signethttp.HeaderRegion, "us-east-1")
}

func TestHandler_NewHandler_InvalidMode(t *testing.T) {
	_, err := signethttp.NewHandler(&signethttp.HandlerConfig{Mode: "ldap"}, nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestHandler_NewHandler_PasswordModeNeedsVerifier(t *testing.T) {
	_, err := signethttp.NewHandler(&signethttp.HandlerConfig{Mode: signet.ModePassword}, nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestHandler_Healthz(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandler_Login_PasswordMode_JSON(t *testing.T) {
	f := newFixture(t, signet.ModePassword, signethttp.CredentialConfig{})

	body := `{"username":"testuser","password":"testpass"}`
	req := httptest.NewRequest("POST", "/token/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var token signet.Token
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&token))
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "bearer", token.TokenType)
}

func TestHandler_Login_PasswordMode_Form(t *testing.T) {
	f := newFixture(t, signet.ModePassword, signethttp.CredentialConfig{})

	body := "username=testuser&password=testpass"
	req := httptest.NewRequest("POST", "/token/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var token signet.Token
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&token))
	assert.NotEmpty(t, token.AccessToken)
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	f := newFixture(t, signet.ModePassword, signethttp.CredentialConfig{})

	body := `{"username":"testuser","password":"wrongpass"}`
	req := httptest.NewRequest("POST", "/token/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))

	var resp signethttp.ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Could not validate credentials", resp.Message)
}

func TestHandler_Login_PassthroughMode(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	body := `{"aws_access_key_id":"AKIATEST","aws_secret_access_key":"testsecret","region_name":"us-east-1"}`
	req := httptest.NewRequest("POST", "/token/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var creds signet.StorageCredentials
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&creds))
	assert.Equal(t, "AKIATEST", creds.AccessKeyID)
	assert.Equal(t, "us-east-1", creds.Region)
}

func TestHandler_Presign_PasswordMode(t *testing.T) {
	f := newFixture(t, signet.ModePassword, signethttp.CredentialConfig{})

	f.presign.On("PresignGet", mock.Anything, mock.MatchedBy(func(c signet.StorageCredentials) bool {
		return c.AccessKeyID == "AKIATEST"
	}), mock.MatchedBy(func(r signet.PresignRequest) bool {
		return r.Bucket == "mybucket" && r.Key == "docs/report.pdf" && r.Expiration == 600
	})).Return(signet.PresignedURL{URL: "https://signed.example.com/x"}, nil)

	body := `{"bucket":"mybucket","key":"docs/report.pdf","expiration":600}`
	req := httptest.NewRequest("POST", "/presigned/get", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+f.bearerToken(t))
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"url":"https://signed.example.com/x"}`, rec.Body.String())

	f.presign.AssertExpectations(t)
}

func TestHandler_Presign_PasswordMode_NoToken(t *testing.T) {
	f := newFixture(t, signet.ModePassword, signethttp.CredentialConfig{})

	body := `{"bucket":"mybucket","key":"file.txt"}`
	req := httptest.NewRequest("POST", "/presigned/get", strings.NewReader(body))
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	f.presign.AssertNotCalled(t, "PresignGet")
}

func TestHandler_Presign_PassthroughMode_MissingHeader(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	body := `{"bucket":"mybucket","key":"file.txt"}`
	req := httptest.NewRequest("POST", "/presigned/put", strings.NewReader(body))
	req.Header.Set(signethttp.HeaderAccessKey, "AKIATEST") // no secret
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp signethttp.ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Missing required header: x-aws-secret-access-key", resp.Message)
	f.presign.AssertNotCalled(t, "PresignPut")
}

func TestHandler_Presign_ValidationFailure(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	tests := []struct {
		name string
		body string
	}{
		{name: "uppercase bucket", body: `{"bucket":"MyBucket","key":"file.txt"}`},
		{name: "bucket too short", body: `{"bucket":"ab","key":"file.txt"}`},
		{name: "missing key", body: `{"bucket":"mybucket"}`},
		{name: "expiration too small", body: `{"bucket":"mybucket","key":"file.txt","expiration":30}`},
		{name: "expiration too large", body: `{"bucket":"mybucket","key":"file.txt","expiration":90000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/presigned/get", strings.NewReader(tt.body))
			setCredentialHeaders(req)
			rec := httptest.NewRecorder()
			f.handler.Router().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp signethttp.ErrorResponse
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "validation_error", resp.Error)
			assert.NotEmpty(t, resp.Fields)
		})
	}

	f.presign.AssertNotCalled(t, "PresignGet")
}

func TestHandler_Presign_Post(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	f.presign.On("PresignPost", mock.Anything, mock.Anything, mock.Anything).
		Return(signet.PostPolicy{
			URL:    "https://mybucket.s3.example.com",
			Fields: map[string]string{"key": "file.txt", "X-Amz-Security-Token": "tok"},
		}, nil)

	body := `{"bucket":"mybucket","key":"file.txt"}`
	req := httptest.NewRequest("POST", "/presigned/post", strings.NewReader(body))
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var policy signet.PostPolicy
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&policy))
	assert.Equal(t, "tok", policy.Fields["X-Amz-Security-Token"])
}

func TestHandler_Presign_EngineFailure(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	f.presign.On("PresignDelete", mock.Anything, mock.Anything, mock.Anything).
		Return(signet.PresignedURL{}, fmt.Errorf("presign delete: %w", signet.ErrPresignFailed))

	body := `{"bucket":"mybucket","key":"file.txt"}`
	req := httptest.NewRequest("POST", "/presigned/delete", strings.NewReader(body))
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp signethttp.ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "presign_error", resp.Error)
}

func TestHandler_Presign_MalformedBody(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	req := httptest.NewRequest("POST", "/presigned/get", strings.NewReader("{not json"))
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	f.lister.On("List", mock.Anything, mock.Anything, "mybucket", "docs/").
		Return(signet.BucketListing{Objects: []signet.ObjectInfo{
			{Key: "docs/a.txt", Size: 100, LastModified: "2026-01-12T07:00:00Z"},
		}}, nil)

	req := httptest.NewRequest("GET", "/bucket/list?bucket=mybucket&prefix=docs/", nil)
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var listing signet.BucketListing
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&listing))
	assert.Len(t, listing.Objects, 1)
	assert.Equal(t, "docs/a.txt", listing.Objects[0].Key)

	f.lister.AssertExpectations(t)
}

func TestHandler_List_InvalidBucketName(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	req := httptest.NewRequest("GET", "/bucket/list?bucket=MyBucket", nil)
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	f.lister.AssertNotCalled(t, "List")
}

func TestHandler_List_BucketNotSpecified(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	f.lister.On("List", mock.Anything, mock.Anything, "", "").
		Return(signet.BucketListing{}, fmt.Errorf("list bucket: %w", signet.ErrBucketNotSpecified))

	req := httptest.NewRequest("GET", "/bucket/list", nil)
	setCredentialHeaders(req)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp signethttp.ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Bucket name not specified in settings or request.", resp.Message)
}

func TestHandler_List_DefaultCredentials(t *testing.T) {
	credCfg := signethttp.CredentialConfig{
		Defaults: signet.StorageCredentials{
			AccessKeyID:     "DEFAULTKEY",
			SecretAccessKey: "defaultsecret",
			Region:          "us-east-1",
		},
	}
	f := newFixture(t, signet.ModePassword, credCfg)

	f.lister.On("List", mock.Anything, mock.MatchedBy(func(c signet.StorageCredentials) bool {
		return c.AccessKeyID == "DEFAULTKEY"
	}), "mybucket", "").Return(signet.BucketListing{Objects: []signet.ObjectInfo{}}, nil)

	// Bearer token alone, no credential headers: configured defaults apply
	req := httptest.NewRequest("GET", "/bucket/list?bucket=mybucket", nil)
	req.Header.Set("Authorization", "Bearer "+f.bearerToken(t))
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	f.lister.AssertExpectations(t)
}

func TestHandler_WasabiTempCredentials(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	expiry := time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC)
	f.wasabi.On("GetTempCredentials", mock.Anything, mock.MatchedBy(func(r signet.TempCredentialRequest) bool {
		return r.Account == "myaccount" && r.Username == "myuser"
	})).Return(signet.TempCredentials{
		AccessKeyID:     "ASIAWASABI",
		SecretAccessKey: "wasabisecret",
		SessionToken:    "wasabitoken",
		Expiration:      expiry,
	}, nil)

	body := `{"account":"myaccount","username":"myuser","password":"mypassword","expires":7200}`
	req := httptest.NewRequest("POST", "/wasabi/temp-credentials", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var creds signet.TempCredentials
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&creds))
	assert.Equal(t, "ASIAWASABI", creds.AccessKeyID)

	f.wasabi.AssertExpectations(t)
}

func TestHandler_WasabiTempCredentials_MissingFields(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	body := `{"account":"myaccount"}`
	req := httptest.NewRequest("POST", "/wasabi/temp-credentials", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	f.wasabi.AssertNotCalled(t, "GetTempCredentials")
}

func TestHandler_WasabiTempCredentials_BrokerFailure(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	f.wasabi.On("GetTempCredentials", mock.Anything, mock.Anything).
		Return(signet.TempCredentials{}, fmt.Errorf("wasabi temp credentials: %w: upstream status 403", signet.ErrBrokerFailed))

	body := `{"account":"myaccount","username":"myuser","password":"wrong"}`
	req := httptest.NewRequest("POST", "/wasabi/temp-credentials", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp signethttp.ErrorResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "broker_error", resp.Error)
}

func TestHandler_STSSession(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	f.session.On("GetSessionToken", mock.Anything, mock.MatchedBy(func(r signet.SessionTokenRequest) bool {
		return r.AccessKey == "AKIATEST" && r.DurationSeconds == 7200
	})).Return(signet.TempCredentials{AccessKeyID: "ASIATEMP"}, nil)

	body := `{"access_key":"AKIATEST","secret_key":"testsecret","duration_seconds":7200}`
	req := httptest.NewRequest("POST", "/wasabi/sts-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var creds signet.TempCredentials
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&creds))
	assert.Equal(t, "ASIATEMP", creds.AccessKeyID)

	f.session.AssertExpectations(t)
}

func TestHandler_STSSession_DurationOutOfRange(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	body := `{"access_key":"AKIATEST","secret_key":"testsecret","duration_seconds":60}`
	req := httptest.NewRequest("POST", "/wasabi/sts-session", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	f.session.AssertNotCalled(t, "GetSessionToken")
}

func TestHandler_RequestIDEchoed(t *testing.T) {
	f := newFixture(t, signet.ModePassthrough, signethttp.CredentialConfig{})

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get(signethttp.RequestIDHeader))
}
