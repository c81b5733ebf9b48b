package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/msherr/research-assistant/internal/auth"
	"github.com/msherr/research-assistant/internal/chat"
	"github.com/msherr/research-assistant/internal/http/middleware"
	"github.com/msherr/research-assistant/internal/http/router"
	"github.com/msherr/research-assistant/internal/llm"
	"github.com/msherr/research-assistant/internal/llm/llmtest"
	"github.com/msherr/research-assistant/internal/paper"
	"github.com/msherr/research-assistant/internal/pdfx"
	"github.com/msherr/research-assistant/internal/prompt"
	"github.com/msherr/research-assistant/internal/session"
	"github.com/msherr/research-assistant/internal/store"
	"github.com/msherr/research-assistant/internal/summarize"
	"github.com/msherr/research-assistant/internal/takeaway"
)

const paperText = "Cats are mammals. Cats chase mice. Dogs bark loudly."

var _ = Describe("routes", func() {
	var (
		engine  *gin.Engine
		fake    *llmtest.Fake
		extract paper.ExtractFunc
	)

	do := func(method, path string, body io.Reader, contentType, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, body)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	doJSON := func(method, path string, payload any, token string) *httptest.ResponseRecorder {
		var body io.Reader
		if payload != nil {
			b, err := json.Marshal(payload)
			Expect(err).NotTo(HaveOccurred())
			body = bytes.NewReader(b)
		}
		return do(method, path, body, "application/json", token)
	}

	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	upload := func(token string, query string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "cats.pdf")
		Expect(err).NotTo(HaveOccurred())
		_, err = fw.Write([]byte("%PDF-1.4 stand-in"))
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())
		return do(http.MethodPost, "/api/v1/papers"+query, &buf, mw.FormDataContentType(), token)
	}

	login := func() string {
		w := doJSON(http.MethodPost, "/auth/register", map[string]string{
			"username": "ada", "password": "pw", "confirm_password": "pw",
		}, "")
		Expect(w.Code).To(Equal(http.StatusCreated))

		w = doJSON(http.MethodPost, "/auth/login", map[string]string{
			"username": "ada", "password": "pw",
		}, "")
		Expect(w.Code).To(Equal(http.StatusOK))
		token, _ := decode(w)["token"].(string)
		Expect(token).NotTo(BeEmpty())
		return token
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		dir := GinkgoT().TempDir()

		ex, err := takeaway.New()
		Expect(err).NotTo(HaveOccurred())

		fake = &llmtest.Fake{Reply: func(req llm.Request) string {
			if req.Messages[0].Content == prompt.ChatSystem {
				return "Cats chase mice."
			}
			return "A paper about cats."
		}}
		extract = func(context.Context, io.ReaderAt, int64) (*pdfx.Doc, error) {
			return &pdfx.Doc{Title: "On Cats", Authors: "A. Lovelace", Body: paperText, Pages: 2}, nil
		}

		sessions := session.NewMemoryStore(time.Hour)
		services := router.Services{
			Auth: auth.NewService(
				store.NewYAMLCredentials(filepath.Join(dir, "credentials.yaml")),
				sessions,
			).WithCost(bcrypt.MinCost),
			Sessions: sessions,
			Papers: paper.NewService(summarize.NewLLM(fake, summarize.Options{}), ex, 5).
				WithExtractFunc(func(ctx context.Context, r io.ReaderAt, n int64) (*pdfx.Doc, error) {
					return extract(ctx, r, n)
				}),
			Chat:      chat.NewService(fake, store.NewYAMLChatHistory(filepath.Join(dir, "user_chats.yaml")), 6000),
			Extractor: ex,
		}

		engine = gin.New()
		engine.Use(middleware.Recovery(), middleware.Logger())
		router.SetupRoutes(engine, services, router.RouterConfig{})
	})

	It("reports health", func() {
		w := do(http.MethodGet, "/health", nil, "", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["status"]).To(Equal("ok"))
	})

	Describe("auth", func() {
		It("rejects mismatched passwords", func() {
			w := doJSON(http.MethodPost, "/auth/register", map[string]string{
				"username": "ada", "password": "a", "confirm_password": "b",
			}, "")
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["error"]).To(Equal(auth.ErrPasswordMismatch.Error()))
		})

		It("rejects duplicate usernames", func() {
			login()
			w := doJSON(http.MethodPost, "/auth/register", map[string]string{
				"username": "ada", "password": "x", "confirm_password": "x",
			}, "")
			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("returns 401 for bad credentials", func() {
			login()
			w := doJSON(http.MethodPost, "/auth/login", map[string]string{
				"username": "ada", "password": "nope",
			}, "")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			w = doJSON(http.MethodPost, "/auth/login", map[string]string{
				"username": "bob", "password": "pw",
			}, "")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("sets the session cookie on login", func() {
			token := login()
			w := doJSON(http.MethodPost, "/auth/login", map[string]string{
				"username": "ada", "password": "pw",
			}, "")
			Expect(w.Header().Get("Set-Cookie")).To(ContainSubstring(middleware.SessionCookieName + "="))
			Expect(token).NotTo(BeEmpty())
		})

		It("accepts the session cookie instead of a bearer token", func() {
			token := login()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/history", nil)
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("guards the api", func() {
			w := doJSON(http.MethodPost, "/api/v1/takeaways", map[string]any{"text": paperText}, "")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			w = doJSON(http.MethodPost, "/api/v1/takeaways", map[string]any{"text": paperText}, "bogus")
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("ends the session on logout", func() {
			token := login()
			w := doJSON(http.MethodPost, "/auth/logout", nil, token)
			Expect(w.Code).To(Equal(http.StatusOK))

			w = doJSON(http.MethodGet, "/api/v1/chat/history", nil, token)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("takeaways", func() {
		It("ranks the posted text", func() {
			token := login()
			w := doJSON(http.MethodPost, "/api/v1/takeaways", map[string]any{"text": paperText, "count": 2}, token)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Takeaways []takeaway.Takeaway `json:"takeaways"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Takeaways).To(HaveLen(2))
			Expect(resp.Takeaways[0].Text).To(Equal("Cats chase mice."))
			Expect(resp.Takeaways[0].Score).To(Equal(4))
			Expect(resp.Takeaways[1].Text).To(Equal("Cats are mammals."))
		})

		It("returns nothing for a zero count", func() {
			token := login()
			w := doJSON(http.MethodPost, "/api/v1/takeaways", map[string]any{"text": paperText, "count": 0}, token)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["takeaways"]).To(BeEmpty())
		})

		It("requires text", func() {
			token := login()
			w := doJSON(http.MethodPost, "/api/v1/takeaways", map[string]any{"count": 2}, token)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("papers", func() {
		It("processes an upload and keeps it on the session", func() {
			token := login()

			w := doJSON(http.MethodGet, "/api/v1/papers/current", nil, token)
			Expect(w.Code).To(Equal(http.StatusNotFound))

			w = upload(token, "?takeaways=1")
			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["title"]).To(Equal("On Cats"))
			Expect(resp["summary"]).To(Equal("A paper about cats."))
			Expect(resp["filename"]).To(Equal("cats.pdf"))
			Expect(resp["takeaways"]).To(HaveLen(1))

			w = doJSON(http.MethodGet, "/api/v1/papers/current", nil, token)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["text"]).To(Equal(paperText))
		})

		It("rejects a bad takeaways parameter", func() {
			token := login()
			Expect(upload(token, "?takeaways=lots").Code).To(Equal(http.StatusBadRequest))
		})

		It("requires the file field", func() {
			token := login()
			w := doJSON(http.MethodPost, "/api/v1/papers", map[string]any{}, token)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("reports unreadable PDFs", func() {
			token := login()
			extract = func(context.Context, io.ReaderAt, int64) (*pdfx.Doc, error) {
				return nil, pdfx.ErrNoText
			}
			w := upload(token, "")
			Expect(w.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(decode(w)["error"]).To(ContainSubstring("no extractable text"))
		})

		It("reports summarizer outages as bad gateway", func() {
			token := login()
			fake.Err = errors.New("quota exceeded")
			Expect(upload(token, "").Code).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("chat", func() {
		It("answers with the current paper as context and keeps history", func() {
			token := login()
			Expect(upload(token, "").Code).To(Equal(http.StatusOK))

			w := doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "What do cats do?"}, token)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["answer"]).To(Equal("Cats chase mice."))

			reqs := fake.Requests()
			Expect(llmtest.LastUserMessage(reqs[len(reqs)-1])).To(ContainSubstring("Document Context: " + paperText))

			w = doJSON(http.MethodGet, "/api/v1/chat/history", nil, token)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w)["messages"]).To(HaveLen(2))

			w = doJSON(http.MethodDelete, "/api/v1/chat/history", nil, token)
			Expect(w.Code).To(Equal(http.StatusNoContent))

			w = doJSON(http.MethodGet, "/api/v1/chat/history", nil, token)
			Expect(decode(w)["messages"]).To(BeEmpty())
		})

		It("maps model failures to bad gateway", func() {
			token := login()
			fake.Err = errors.New("quota exceeded")
			w := doJSON(http.MethodPost, "/api/v1/chat", map[string]string{"message": "hi"}, token)
			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})

		It("requires a message", func() {
			token := login()
			w := doJSON(http.MethodPost, "/api/v1/chat", map[string]string{}, token)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
