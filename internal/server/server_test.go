package server_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/khushboocodes/QuickDesk/internal/domain"
)

var _ = Describe("QuickDesk HTTP API", func() {
	var h *harness

	BeforeEach(func() {
		h = newHarness()
	})

	AfterEach(func() {
		h.close()
	})

	Describe("health", func() {
		It("reports liveness and readiness without external dependencies", func() {
			Expect(h.call(http.MethodGet, "/health/live", "", nil).status).To(Equal(http.StatusOK))

			ready := h.call(http.MethodGet, "/health/ready", "", nil)
			Expect(ready.status).To(Equal(http.StatusOK))
			Expect(ready.body["dependencies"]).To(HaveKeyWithValue("postgres", "disabled"))
			Expect(ready.body["dependencies"]).To(HaveKeyWithValue("redis", "disabled"))
		})

		It("exposes request counters", func() {
			h.call(http.MethodGet, "/health/live", "", nil)
			metrics := h.call(http.MethodGet, "/health/metrics", "", nil)
			Expect(metrics.status).To(Equal(http.StatusOK))
			Expect(metrics.data()).To(HaveKey("requests"))
		})

		It("renders unknown routes with the error envelope", func() {
			resp := h.call(http.MethodGet, "/nowhere", "", nil)
			Expect(resp.status).To(Equal(http.StatusNotFound))
			Expect(resp.errorCode()).To(Equal("NOT_FOUND"))
		})
	})

	Describe("sessions", func() {
		It("registers an end user and signs them in", func() {
			resp := h.call(http.MethodPost, "/auth/register", "", map[string]string{
				"full_name": "New Person", "email": "New@Example.com", "password": "longenough",
			})
			Expect(resp.status).To(Equal(http.StatusCreated))
			Expect(resp.data()["token"]).NotTo(BeEmpty())
			user := resp.data()["user"].(map[string]any)
			Expect(user["email"]).To(Equal("new@example.com"))
			Expect(user["role"]).To(Equal("end_user"))
			Expect(user["access_level"]).To(Equal("User Access"))

			again := h.call(http.MethodPost, "/auth/register", "", map[string]string{
				"email": "new@example.com", "password": "longenough",
			})
			Expect(again.status).To(Equal(http.StatusConflict))
		})

		It("reports invalid fields by JSON name", func() {
			resp := h.call(http.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "short"})
			Expect(resp.status).To(Equal(http.StatusBadRequest))
			Expect(resp.errorCode()).To(Equal("VALIDATION_FAILED"))
			details := resp.body["error"].(map[string]any)["details"].(map[string]any)
			Expect(details["fields"]).To(HaveKeyWithValue("email", "email"))
			Expect(details["fields"]).To(HaveKeyWithValue("password", "min=8"))
		})

		It("rejects bad credentials and missing tokens", func() {
			h.signIn("user@example.com", domain.RoleEndUser)
			resp := h.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "user@example.com", "password": "wrong-password"})
			Expect(resp.status).To(Equal(http.StatusUnauthorized))

			Expect(h.call(http.MethodGet, "/me", "", nil).status).To(Equal(http.StatusUnauthorized))
			Expect(h.call(http.MethodGet, "/me", "garbage", nil).status).To(Equal(http.StatusUnauthorized))
		})

		It("stops accepting a token after logout", func() {
			token := h.signIn("user@example.com", domain.RoleEndUser)
			Expect(h.call(http.MethodGet, "/me", token, nil).status).To(Equal(http.StatusOK))
			Expect(h.call(http.MethodPost, "/auth/logout", token, nil).status).To(Equal(http.StatusOK))
			Expect(h.call(http.MethodGet, "/me", token, nil).status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("navigation", func() {
		It("is empty for anonymous callers", func() {
			resp := h.call(http.MethodGet, "/navigation", "", nil)
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["authenticated"]).To(BeFalse())
			Expect(resp.data()["items"]).To(BeEmpty())
		})

		It("follows the role allow-list", func() {
			pagesFor := func(token string) []string {
				items := h.call(http.MethodGet, "/navigation", token, nil).data()["items"].([]any)
				pages := make([]string, 0, len(items))
				for _, item := range items {
					pages = append(pages, item.(map[string]any)["page"].(string))
				}
				return pages
			}
			Expect(pagesFor(h.signIn("u@example.com", domain.RoleEndUser))).
				To(Equal([]string{"Dashboard", "Tickets", "CreateTicket"}))
			Expect(pagesFor(h.signIn("a@example.com", domain.RoleSupportAgent))).
				To(Equal([]string{"Dashboard", "Tickets", "CreateTicket", "AllTickets"}))
			Expect(pagesFor(h.signIn("root@example.com", domain.RoleAdmin))).
				To(Equal([]string{"Dashboard", "Tickets", "CreateTicket", "AllTickets", "Admin"}))
		})

		It("treats an invalid token as anonymous", func() {
			resp := h.call(http.MethodGet, "/navigation", "garbage", nil)
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["authenticated"]).To(BeFalse())
		})
	})

	Describe("role gate", func() {
		It("refuses pages outside the caller's role", func() {
			user := h.signIn("user@example.com", domain.RoleEndUser)
			agent := h.signIn("agent@example.com", domain.RoleSupportAgent)

			Expect(h.call(http.MethodGet, "/tickets/all", user, nil).status).To(Equal(http.StatusForbidden))
			Expect(h.call(http.MethodGet, "/tickets/all", agent, nil).status).To(Equal(http.StatusOK))
			Expect(h.call(http.MethodGet, "/admin/users", agent, nil).status).To(Equal(http.StatusForbidden))
			Expect(h.call(http.MethodGet, "/admin/users", "", nil).status).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("ticket lists", func() {
		var token string
		base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

		BeforeEach(func() {
			token = h.signIn("user@example.com", domain.RoleEndUser)
			for i := 0; i < 12; i++ {
				h.addTicket(fmt.Sprintf("ticket %02d", i), "user@example.com", base.Add(time.Duration(i)*time.Hour))
			}
			h.addTicket("someone else", "other@example.com", base.Add(48*time.Hour))
		})

		It("pages the caller's own tickets newest first", func() {
			first := h.call(http.MethodGet, "/tickets", token, nil)
			Expect(first.status).To(Equal(http.StatusOK))
			Expect(first.list()).To(HaveLen(10))
			Expect(first.list()[0].(map[string]any)["title"]).To(Equal("ticket 11"))
			Expect(first.meta()["total_pages"]).To(BeEquivalentTo(2))
			Expect(first.meta()["total"]).To(BeEquivalentTo(12))

			second := h.call(http.MethodGet, "/tickets?page=2", token, nil)
			Expect(second.list()).To(HaveLen(2))
			Expect(second.list()[1].(map[string]any)["title"]).To(Equal("ticket 00"))
		})

		It("resets an out-of-range page to the first one", func() {
			resp := h.call(http.MethodGet, "/tickets?page=9", token, nil)
			Expect(resp.meta()["page"]).To(BeEquivalentTo(1))
			Expect(resp.list()).To(HaveLen(10))
		})

		It("includes other reporters when own_only is off", func() {
			resp := h.call(http.MethodGet, "/tickets?own_only=false&search=someone", token, nil)
			Expect(resp.list()).To(HaveLen(1))
		})

		It("reports persisted comment counts", func() {
			list := h.call(http.MethodGet, "/tickets", token, nil).list()
			id := list[0].(map[string]any)["id"].(string)
			for i := 0; i < 2; i++ {
				resp := h.call(http.MethodPost, "/tickets/"+id+"/comments", token, map[string]any{"content": "ping"})
				Expect(resp.status).To(Equal(http.StatusCreated))
			}
			list = h.call(http.MethodGet, "/tickets?sort=comments", token, nil).list()
			Expect(list[0].(map[string]any)["id"]).To(Equal(id))
			Expect(list[0].(map[string]any)["comment_count"]).To(BeEquivalentTo(2))
		})

		It("rejects stale request tokens and echoes the token", func() {
			resp := h.call(http.MethodGet, "/tickets", token, nil, "X-Request-Token", "5")
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.header.Get("X-Request-Token")).To(Equal("5"))
			Expect(resp.meta()["request_token"]).To(BeEquivalentTo(5))

			stale := h.call(http.MethodGet, "/tickets", token, nil, "X-Request-Token", "3")
			Expect(stale.status).To(Equal(http.StatusConflict))
			Expect(stale.errorCode()).To(Equal("STALE_REQUEST"))
			Expect(stale.header.Get("X-Request-Token")).To(Equal("3"))

			Expect(h.call(http.MethodGet, "/tickets", token, nil, "X-Request-Token", "6").status).To(Equal(http.StatusOK))
			Expect(h.call(http.MethodGet, "/tickets", token, nil).status).To(Equal(http.StatusOK), "token is optional")
		})

		It("starts request tokens over after logout", func() {
			Expect(h.call(http.MethodGet, "/tickets", token, nil, "X-Request-Token", "5").status).To(Equal(http.StatusOK))
			Expect(h.call(http.MethodPost, "/auth/logout", token, nil).status).To(Equal(http.StatusOK))

			login := h.call(http.MethodPost, "/auth/login", "", map[string]string{"email": "user@example.com", "password": testPassword})
			Expect(login.status).To(Equal(http.StatusOK))
			fresh := login.data()["token"].(string)

			resp := h.call(http.MethodGet, "/tickets", fresh, nil, "X-Request-Token", "1")
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.meta()["request_token"]).To(BeEquivalentTo(1))
		})
	})

	Describe("ticket workflow", func() {
		var user, agent string

		BeforeEach(func() {
			user = h.signIn("user@example.com", domain.RoleEndUser)
			agent = h.signIn("agent@example.com", domain.RoleSupportAgent)
		})

		createTicket := func() string {
			resp := h.call(http.MethodPost, "/tickets", user, map[string]any{
				"title": "Printer on fire", "description": "Smoke everywhere", "priority": "urgent", "tags": []string{"hardware"},
			})
			Expect(resp.status).To(Equal(http.StatusCreated))
			Expect(resp.data()["status"]).To(Equal("open"))
			Expect(resp.data()["reporter_email"]).To(Equal("user@example.com"))
			return resp.data()["id"].(string)
		}

		It("validates new tickets", func() {
			resp := h.call(http.MethodPost, "/tickets", user, map[string]any{"title": "", "description": "x"})
			Expect(resp.status).To(Equal(http.StatusBadRequest))

			resp = h.call(http.MethodPost, "/tickets", user, map[string]any{"title": "t", "description": "d", "priority": "whenever"})
			Expect(resp.status).To(Equal(http.StatusBadRequest))

			resp = h.call(http.MethodPost, "/tickets", user, map[string]any{"title": "t", "description": "d", "category_id": "missing"})
			Expect(resp.status).To(Equal(http.StatusBadRequest))
		})

		It("lets only managers change status and priority", func() {
			id := createTicket()
			Expect(h.call(http.MethodPatch, "/tickets/"+id, user, map[string]any{"status": "closed"}).status).
				To(Equal(http.StatusForbidden))

			resp := h.call(http.MethodPatch, "/tickets/"+id, agent, map[string]any{"status": "in_progress", "priority": "high"})
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["status"]).To(Equal("in_progress"))
			Expect(resp.data()["priority"]).To(Equal("high"))

			Expect(h.call(http.MethodPatch, "/tickets/"+id, agent, map[string]any{"status": "sleeping"}).status).
				To(Equal(http.StatusBadRequest))
		})

		It("never lets upvotes drop below zero", func() {
			id := createTicket()
			resp := h.call(http.MethodPost, "/tickets/"+id+"/vote", user, map[string]any{"direction": "down"})
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["upvotes"]).To(BeEquivalentTo(0))

			resp = h.call(http.MethodPost, "/tickets/"+id+"/vote", agent, map[string]any{"direction": "up"})
			Expect(resp.data()["upvotes"]).To(BeEquivalentTo(1))

			Expect(h.call(http.MethodPost, "/tickets/"+id+"/vote", agent, map[string]any{"direction": "sideways"}).status).
				To(Equal(http.StatusBadRequest))
		})

		It("hides internal comments from end users", func() {
			id := createTicket()
			Expect(h.call(http.MethodPost, "/tickets/"+id+"/comments", agent, map[string]any{"content": "public reply"}).status).
				To(Equal(http.StatusCreated))
			Expect(h.call(http.MethodPost, "/tickets/"+id+"/comments", agent, map[string]any{"content": "agent note", "is_internal": true}).status).
				To(Equal(http.StatusCreated))
			Expect(h.call(http.MethodPost, "/tickets/"+id+"/comments", user, map[string]any{"content": "sneaky", "is_internal": true}).status).
				To(Equal(http.StatusForbidden))

			detail := h.call(http.MethodGet, "/tickets/"+id, user, nil).data()
			Expect(detail["can_manage"]).To(BeFalse())
			Expect(detail["comments"]).To(HaveLen(1))
			Expect(detail["comments"].([]any)[0].(map[string]any)["content"]).To(Equal("public reply"))
			Expect(detail["ticket"].(map[string]any)["comment_count"]).To(BeEquivalentTo(1))

			Expect(h.call(http.MethodGet, "/tickets/"+id+"/comments", user, nil).list()).To(HaveLen(1))
			Expect(h.call(http.MethodGet, "/tickets/"+id+"/comments", agent, nil).list()).To(HaveLen(2))

			agentDetail := h.call(http.MethodGet, "/tickets/"+id, agent, nil).data()
			Expect(agentDetail["can_comment_internal"]).To(BeTrue())
			Expect(agentDetail["comments"]).To(HaveLen(2))
			Expect(agentDetail["ticket"].(map[string]any)["comment_count"]).To(BeEquivalentTo(2))
		})

		It("returns 404 for unknown tickets", func() {
			resp := h.call(http.MethodGet, "/tickets/does-not-exist", user, nil)
			Expect(resp.status).To(Equal(http.StatusNotFound))
			Expect(resp.errorCode()).To(Equal("NOT_FOUND"))
		})
	})

	Describe("dashboard", func() {
		It("scopes end users to their own tickets", func() {
			user := h.signIn("user@example.com", domain.RoleEndUser)
			admin := h.signIn("admin@example.com", domain.RoleAdmin)
			now := time.Now().UTC()
			h.addTicket("mine", "user@example.com", now)
			h.addTicket("theirs", "other@example.com", now)

			mine := h.call(http.MethodGet, "/dashboard", user, nil).data()
			Expect(mine["summary"]).To(HaveKeyWithValue("total", BeEquivalentTo(1)))
			all := h.call(http.MethodGet, "/dashboard", admin, nil).data()
			Expect(all["summary"]).To(HaveKeyWithValue("total", BeEquivalentTo(2)))
			Expect(all["activity"]).To(HaveLen(7))
		})
	})

	Describe("profile and upgrades", func() {
		It("updates the caller's profile", func() {
			token := h.signIn("user@example.com", domain.RoleEndUser)
			resp := h.call(http.MethodPut, "/me", token, map[string]any{"full_name": "  Jane Doe ", "phone": "555-0100"})
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["full_name"]).To(Equal("Jane Doe"))
			Expect(resp.data()["phone"]).To(Equal("555-0100"))
		})

		It("stores avatars as images only", func() {
			token := h.signIn("user@example.com", domain.RoleEndUser)
			png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

			resp := h.upload("/me/avatar", token, "me.png", png)
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["avatar_url"]).To(HavePrefix("/files/"))

			Expect(h.upload("/me/avatar", token, "me.png", []byte("not an image")).status).To(Equal(http.StatusBadRequest))
		})

		It("runs an upgrade request through approval exactly once", func() {
			user := h.signIn("user@example.com", domain.RoleEndUser)
			admin := h.signIn("admin@example.com", domain.RoleAdmin)

			Expect(h.call(http.MethodPost, "/me/upgrade-requests", user, map[string]any{"requested_role": "end_user", "reason": "same"}).status).
				To(Equal(http.StatusBadRequest))

			created := h.call(http.MethodPost, "/me/upgrade-requests", user, map[string]any{"requested_role": "support_agent", "reason": "I help a lot"})
			Expect(created.status).To(Equal(http.StatusCreated))
			id := created.data()["id"].(string)

			Expect(h.call(http.MethodPost, "/me/upgrade-requests", user, map[string]any{"requested_role": "admin", "reason": "again"}).status).
				To(Equal(http.StatusConflict))

			pending := h.call(http.MethodGet, "/admin/upgrade-requests", admin, nil).list()
			Expect(pending).To(HaveLen(1))

			Expect(h.call(http.MethodPost, "/admin/upgrade-requests/"+id+"/approve", admin, nil).status).To(Equal(http.StatusOK))
			Expect(h.call(http.MethodPost, "/admin/upgrade-requests/"+id+"/reject", admin, nil).status).To(Equal(http.StatusConflict))

			me := h.call(http.MethodGet, "/me", user, nil).data()
			Expect(me["role"]).To(Equal("support_agent"))
			Expect(h.call(http.MethodGet, "/tickets/all", user, nil).status).To(Equal(http.StatusOK))
		})
	})

	Describe("administration", func() {
		var admin string

		BeforeEach(func() {
			admin = h.signIn("admin@example.com", domain.RoleAdmin)
		})

		It("manages categories", func() {
			Expect(h.call(http.MethodPost, "/admin/categories", admin, map[string]any{"name": "Billing", "color": "blue"}).status).
				To(Equal(http.StatusBadRequest))

			created := h.call(http.MethodPost, "/admin/categories", admin, map[string]any{"name": "Billing", "color": "#123abc"})
			Expect(created.status).To(Equal(http.StatusCreated))
			id := created.data()["id"].(string)
			Expect(created.data()["icon"]).To(Equal(domain.DefaultCategoryIcon))

			updated := h.call(http.MethodPut, "/admin/categories/"+id, admin, map[string]any{"name": "Payments"})
			Expect(updated.status).To(Equal(http.StatusOK))
			Expect(updated.data()["color"]).To(Equal("#123abc"))

			user := h.signIn("user@example.com", domain.RoleEndUser)
			list := h.call(http.MethodGet, "/categories", user, nil).list()
			Expect(list).To(HaveLen(1))
			Expect(list[0].(map[string]any)["name"]).To(Equal("Payments"))

			Expect(h.call(http.MethodDelete, "/admin/categories/"+id, admin, nil).status).To(Equal(http.StatusNoContent))
			Expect(h.call(http.MethodGet, "/categories", user, nil).list()).To(BeEmpty())
		})

		It("changes user roles", func() {
			h.signIn("user@example.com", domain.RoleEndUser)
			target, err := h.repos.Users.GetByEmail(context.Background(), "user@example.com")
			Expect(err).NotTo(HaveOccurred())

			Expect(h.call(http.MethodPatch, "/admin/users/"+target.ID+"/role", admin, map[string]any{"role": "overlord"}).status).
				To(Equal(http.StatusBadRequest))
			resp := h.call(http.MethodPatch, "/admin/users/"+target.ID+"/role", admin, map[string]any{"role": "admin"})
			Expect(resp.status).To(Equal(http.StatusOK))
			Expect(resp.data()["role"]).To(Equal("admin"))

			users := h.call(http.MethodGet, "/admin/users", admin, nil).list()
			Expect(users).To(HaveLen(2))
		})
	})

	Describe("uploads", func() {
		It("stores attachments under a random name", func() {
			token := h.signIn("user@example.com", domain.RoleEndUser)
			resp := h.upload("/uploads", token, "notes.txt", []byte("hello"))
			Expect(resp.status).To(Equal(http.StatusCreated))
			url := resp.data()["file_url"].(string)
			Expect(url).To(HavePrefix("/files/"))
			Expect(url).NotTo(ContainSubstring("notes"))

			stored, err := h.files.Stat(strings.TrimPrefix(url, "/files/"))
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Size()).To(BeEquivalentTo(5))
		})

		It("requires a file field", func() {
			token := h.signIn("user@example.com", domain.RoleEndUser)
			resp := h.call(http.MethodPost, "/uploads", token, map[string]any{})
			Expect(resp.status).To(Equal(http.StatusBadRequest))
		})
	})
})
