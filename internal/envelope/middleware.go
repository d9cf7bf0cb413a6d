package envelope

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"trellolite/internal/logger"
)

// maxBodyBytes limits encrypted request bodies to 1MB
const maxBodyBytes = 1 << 20

// Middleware decrypts `{"data": "<ciphertext>"}` request bodies and wraps
// every JSON response the same way.
type Middleware struct {
	secret  string
	logger  *zap.Logger
	parsers fastjson.ParserPool
}

// NewMiddleware creates the envelope middleware for the given shared secret
func NewMiddleware(secret string, logger *zap.Logger) *Middleware {
	return &Middleware{secret: secret, logger: logger}
}

// Wrap is a mux.MiddlewareFunc
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newRecorder()
		defer m.flush(w, r, rec)

		if err := m.decryptRequest(r); err != nil {
			logger.FromContext(r.Context(), m.logger).Warn("rejecting request envelope", zap.Error(err))
			rec.Header().Set("Content-Type", "application/json")
			rec.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(rec).Encode(map[string]string{"error": "Invalid encrypted data"})
			return
		}

		next.ServeHTTP(rec, r)
	})
}

func (m *Middleware) decryptRequest(r *http.Request) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	r.Body.Close()
	if err != nil {
		return err
	}
	if len(body) > maxBodyBytes {
		return errBodyTooLarge
	}
	setBody(r, body)

	p := m.parsers.Get()
	defer m.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil || v.Type() != fastjson.TypeObject {
		// not an envelope; the handler reports malformed JSON itself
		return nil
	}

	data := v.Get("data")
	if data == nil {
		return nil
	}
	switch data.Type() {
	case fastjson.TypeNull:
		return nil
	case fastjson.TypeString:
	default:
		return errNotString
	}

	ciphertext := string(data.GetStringBytes())
	if ciphertext == "" {
		return nil
	}

	plain, err := Decrypt(ciphertext, m.secret)
	if err != nil {
		return err
	}
	if err := fastjson.ValidateBytes(plain); err != nil {
		return err
	}

	setBody(r, plain)
	return nil
}

func (m *Middleware) flush(w http.ResponseWriter, r *http.Request, rec *recorder) {
	for k, v := range rec.header {
		w.Header()[k] = v
	}

	body := rec.body.Bytes()
	if len(body) > 0 && isJSON(rec.header.Get("Content-Type")) {
		sealed, err := Encrypt(bytes.TrimSpace(body), m.secret)
		if err != nil {
			logger.FromContext(r.Context(), m.logger).Error("failed to encrypt response", zap.Error(err))
			w.Header().Del("Content-Length")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, _ = json.Marshal(map[string]string{"data": sealed})
		w.Header().Set("Content-Length", strconv.Itoa(len(body)+1))
		body = append(body, '\n')
	}

	w.WriteHeader(rec.status)
	w.Write(body)
}

func setBody(r *http.Request, b []byte) {
	r.Body = io.NopCloser(bytes.NewReader(b))
	r.ContentLength = int64(len(b))
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "application/json")
}

type envelopeError string

func (e envelopeError) Error() string { return string(e) }

const (
	errBodyTooLarge envelopeError = "request body too large"
	errNotString    envelopeError = "data field must be a string"
)

// recorder buffers a response so it can be sealed before it is sent
type recorder struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header { return r.header }

func (r *recorder) WriteHeader(code int) {
	if r.wrote {
		return
	}
	r.status = code
	r.wrote = true
}

func (r *recorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.body.Write(b)
}
