package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"file-storage-api/internal/application/ports"
	"file-storage-api/internal/domain/apperr"
	"file-storage-api/internal/domain/user"
)

const (
	aliceToken = "alice-token"
	adminToken = "admin-token"
)

var (
	alice = ports.Identity{UserID: 1, Username: "alice", Role: user.RoleUser}
	admin = ports.Identity{UserID: 9, Username: "root", Role: user.RoleAdmin}
)

// FakeGate knows two bearer tokens and applies the real role rules.
type FakeGate struct{}

func (FakeGate) Authenticate(tokenStr string) (ports.Identity, error) {
	switch tokenStr {
	case aliceToken:
		return alice, nil
	case adminToken:
		return admin, nil
	}
	return ports.Identity{}, apperr.ErrUnauthenticated
}

func (FakeGate) RequireRole(id ports.Identity, role user.Role) error {
	if id.Role == role || id.IsAdmin() {
		return nil
	}
	return apperr.ErrForbidden
}

func (FakeGate) RequireOwnerOrAdmin(id ports.Identity, ownerID user.ID) error {
	if id.UserID == ownerID || id.IsAdmin() {
		return nil
	}
	return apperr.ErrForbidden
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func doReq(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		rd = bytes.NewReader([]byte(v))
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, path, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func doMultipartReq(t *testing.T, r *gin.Engine, path, token, field, filename, mime string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
		if mime != "" {
			h.Set("Content-Type", mime)
		}
		fw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return env
}
