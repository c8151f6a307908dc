package modelscmder

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/cmd/voicechat/bootstrap"
	"github.com/papercomputeco/voicechat/pkg/config"
)

const modelsBody = `{"data":[
	{"id":"openai/gpt-4o-mini","name":"GPT-4o mini","context_length":128000,
	 "pricing":{"prompt":"0.00000015","completion":"0.0000006"},"description":"Small and fast."},
	{"id":"meta/llama-3-8b"}
]}`

var _ = Describe("Models Command", func() {
	var (
		upstream *httptest.Server
		status   int
		cmder    *modelsCommander
		out      *bytes.Buffer
		cmd      *cobra.Command
	)

	BeforeEach(func() {
		status = http.StatusOK
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(modelsBody))
		}))
		DeferCleanup(upstream.Close)

		GinkgoT().Setenv("HOME", GinkgoT().TempDir())
		GinkgoT().Setenv("OPENROUTER_API_KEY", "sk-or-test")
		GinkgoT().Setenv("OPENROUTER_BASE_URL", upstream.URL)
		GinkgoT().Setenv("DEFAULT_MODEL", "")
		GinkgoT().Setenv("DEBUG", "")
		GinkgoT().Setenv("VOICECHAT_MAX_HISTORY", "")

		cmder = &modelsCommander{
			flags:     &bootstrap.Flags{},
			newLogger: func(*config.Config) *zap.Logger { return zap.NewNop() },
		}
		out = &bytes.Buffer{}
		cmd = &cobra.Command{}
		cmd.SetOut(out)
	})

	It("lists every model", func() {
		Expect(cmder.run(context.Background(), cmd)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("2 models available"))
		Expect(out.String()).To(ContainSubstring("openai/gpt-4o-mini"))
		Expect(out.String()).To(ContainSubstring("GPT-4o mini"))
		Expect(out.String()).To(ContainSubstring("meta/llama-3-8b"))
	})

	It("shows a single model", func() {
		cmder.id = "openai/gpt-4o-mini"
		Expect(cmder.run(context.Background(), cmd)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("ID:             openai/gpt-4o-mini"))
		Expect(out.String()).To(ContainSubstring("Context length: 128000"))
		Expect(out.String()).To(ContainSubstring("Prompt price:   0.00000015"))
		Expect(out.String()).To(ContainSubstring("Small and fast."))
	})

	It("fails for an unknown model", func() {
		cmder.id = "missing/model"
		err := cmder.run(context.Background(), cmd)
		Expect(err).To(MatchError(`model "missing/model" not found`))
	})

	It("fails when the listing fails", func() {
		status = http.StatusInternalServerError
		err := cmder.run(context.Background(), cmd)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("could not fetch models"))
	})

	It("registers the id flag", func() {
		Expect(NewModelsCmd(&bootstrap.Flags{}).Flags().Lookup("id")).NotTo(BeNil())
	})
})
