package openrouter_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/openrouter"
)

var _ = Describe("Model listing", func() {
	var (
		ctx    context.Context
		status int
		body   string
		server *httptest.Server
		client *openrouter.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		status = http.StatusOK
		body = `{"data":[
			{"id":"openai/gpt-4o-mini","name":"GPT-4o mini","context_length":128000,
			 "pricing":{"prompt":"0.00000015","completion":"0.0000006"}},
			{"id":"anthropic/claude-3-haiku","name":"Claude 3 Haiku"}
		]}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodGet))
			Expect(r.URL.Path).To(Equal("/models"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-or-test"))
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
		DeferCleanup(server.Close)

		var err error
		client, err = openrouter.New(openrouter.Config{APIKey: "sk-or-test", BaseURL: server.URL}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("AvailableModels", func() {
		It("decodes the listing", func() {
			list := client.AvailableModels(ctx)

			Expect(list).NotTo(BeNil())
			Expect(list.Data).To(HaveLen(2))
			Expect(list.Data[0].ContextLength).To(Equal(128000))
			Expect(list.Data[0].Pricing.Prompt).To(Equal("0.00000015"))
		})

		It("returns nil on a non-2xx status", func() {
			status = http.StatusUnauthorized
			Expect(client.AvailableModels(ctx)).To(BeNil())
		})

		It("returns nil on an undecodable body", func() {
			body = `<html>`
			Expect(client.AvailableModels(ctx)).To(BeNil())
		})
	})

	Describe("TestConnection", func() {
		It("succeeds when models are listed", func() {
			Expect(client.TestConnection(ctx)).To(BeTrue())
		})

		It("fails when the listing is unavailable", func() {
			status = http.StatusInternalServerError
			Expect(client.TestConnection(ctx)).To(BeFalse())
		})
	})

	Describe("ModelInfo", func() {
		It("finds a model by id", func() {
			info := client.ModelInfo(ctx, "anthropic/claude-3-haiku")

			Expect(info).NotTo(BeNil())
			Expect(info.Name).To(Equal("Claude 3 Haiku"))
		})

		It("returns nil for an unknown id", func() {
			Expect(client.ModelInfo(ctx, "x")).To(BeNil())
		})

		It("returns nil when the listing call fails", func() {
			server.Close()
			Expect(client.ModelInfo(ctx, "x")).To(BeNil())
		})
	})
})
