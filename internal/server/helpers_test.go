package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
	"golang.org/x/crypto/bcrypt"

	"github.com/khushboocodes/QuickDesk/internal/auth"
	"github.com/khushboocodes/QuickDesk/internal/cache"
	"github.com/khushboocodes/QuickDesk/internal/config"
	"github.com/khushboocodes/QuickDesk/internal/domain"
	"github.com/khushboocodes/QuickDesk/internal/repository/memory"
	"github.com/khushboocodes/QuickDesk/internal/server"
	"github.com/khushboocodes/QuickDesk/internal/storage"
)

const testPassword = "correct-horse"

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (d *memoryDenylist) Revoke(_ context.Context, tokenID string, _ time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[tokenID] = true
	return nil
}

func (d *memoryDenylist) IsRevoked(_ context.Context, tokenID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.revoked[tokenID]
}

var _ auth.Denylist = (*memoryDenylist)(nil)

type harness struct {
	srv   *server.Server
	store *memory.Store
	repos server.Repositories
	files afero.Fs
}

func newHarness() *harness {
	cfg := &config.Config{
		App:    config.AppConfig{Name: "quickdesk-test", Version: "test", RequestTimeoutSeconds: 5},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: bcrypt.MinCost},
		Upload: config.UploadConfig{PublicBaseURL: "/files", MaxBytes: 1 << 20},
		Cache:  config.CacheConfig{CategoryTTLSeconds: 60},
	}
	store := memory.NewStore()
	repos := server.MemoryRepositories(store)
	files := afero.NewMemMapFs()
	srv := server.New(server.Dependencies{
		Config:   cfg,
		Repos:    repos,
		Cache:    cache.New(nil, "", nil),
		Denylist: &memoryDenylist{revoked: map[string]bool{}},
		Files:    storage.NewStore(files, cfg.Upload.PublicBaseURL, cfg.Upload.MaxBytes),
	})
	return &harness{srv: srv, store: store, repos: repos, files: files}
}

func (h *harness) close() {
	h.srv.Worker.Stop()
}

type response struct {
	status int
	header http.Header
	body   map[string]any
}

func (r response) data() map[string]any {
	data, ok := r.body["data"].(map[string]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "data is not an object: %v", r.body)
	return data
}

func (r response) list() []any {
	items, ok := r.body["data"].([]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "data is not a list: %v", r.body)
	return items
}

func (r response) meta() map[string]any {
	meta, ok := r.body["meta"].(map[string]any)
	ExpectWithOffset(1, ok).To(BeTrue(), "meta missing: %v", r.body)
	return meta
}

func (r response) errorCode() string {
	errBody, ok := r.body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func (h *harness) send(req *http.Request) response {
	resp, err := h.srv.App.Test(req, -1)
	ExpectWithOffset(2, err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	ExpectWithOffset(2, err).NotTo(HaveOccurred())

	out := response{status: resp.StatusCode, header: resp.Header, body: map[string]any{}}
	if len(raw) > 0 {
		ExpectWithOffset(2, json.Unmarshal(raw, &out.body)).To(Succeed(), "body: %s", raw)
	}
	return out
}

func (h *harness) call(method, path, token string, body any, headers ...string) response {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return h.send(req)
}

func (h *harness) upload(path, token, filename string, content []byte) response {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	_, err = part.Write(content)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	ExpectWithOffset(1, writer.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return h.send(req)
}

// signIn creates an account with role and returns a bearer token for it.
func (h *harness) signIn(email string, role domain.Role) string {
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())
	user := &domain.User{Email: email, FullName: email, Role: role, PasswordHash: hash}
	ExpectWithOffset(1, h.repos.Users.Create(context.Background(), user)).To(Succeed())

	resp := h.call(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": testPassword})
	ExpectWithOffset(1, resp.status).To(Equal(http.StatusOK))
	return resp.data()["token"].(string)
}

func (h *harness) addTicket(title, reporter string, created time.Time) domain.Ticket {
	ticket := domain.Ticket{
		Title:         title,
		Description:   "details",
		Status:        domain.TicketStatusOpen,
		Priority:      domain.TicketPriorityMedium,
		ReporterEmail: reporter,
		CreatedDate:   created,
	}
	ExpectWithOffset(1, h.repos.Tickets.Create(context.Background(), &ticket)).To(Succeed())
	return ticket
}
