package llm_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/voicechat/pkg/llm"
)

var _ = Describe("ChatRequest", func() {
	It("flattens the generation parameters into the request body", func() {
		req := llm.ChatRequest{
			Model:            "test-model",
			Messages:         []llm.Message{llm.UserMessage("Hi")},
			GenerationParams: llm.DefaultGenerationParams(),
		}

		data, err := json.Marshal(req)
		Expect(err).NotTo(HaveOccurred())

		var body map[string]any
		Expect(json.Unmarshal(data, &body)).To(Succeed())
		Expect(body).To(HaveKeyWithValue("model", "test-model"))
		Expect(body).To(HaveKeyWithValue("max_tokens", float64(1000)))
		Expect(body).To(HaveKeyWithValue("temperature", 0.7))
		Expect(body).To(HaveKeyWithValue("top_p", 0.9))
		Expect(body).To(HaveKeyWithValue("frequency_penalty", 0.1))
		Expect(body).To(HaveKeyWithValue("presence_penalty", 0.1))
		Expect(body).To(HaveKeyWithValue("stream", false))
		Expect(body).NotTo(HaveKey("GenerationParams"))
	})
})

var _ = Describe("ChatResponse", func() {
	It("returns the first choice content", func() {
		resp := llm.ChatResponse{Choices: []llm.Choice{
			{Message: llm.AssistantMessage("first")},
			{Message: llm.AssistantMessage("second")},
		}}

		content, ok := resp.Content()
		Expect(ok).To(BeTrue())
		Expect(content).To(Equal("first"))
	})

	It("reports missing choices", func() {
		resp := llm.ChatResponse{}

		_, ok := resp.Content()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("ModelList", func() {
	It("finds a model by id", func() {
		list := &llm.ModelList{Data: []llm.ModelInfo{{ID: "a"}, {ID: "b", Name: "Model B"}}}

		Expect(list.Find("b")).NotTo(BeNil())
		Expect(list.Find("b").Name).To(Equal("Model B"))
	})

	It("returns nil when nothing matches or the list is absent", func() {
		list := &llm.ModelList{Data: []llm.ModelInfo{{ID: "a"}}}
		var missing *llm.ModelList

		Expect(list.Find("x")).To(BeNil())
		Expect(missing.Find("a")).To(BeNil())
	})
})

var _ = Describe("Turn", func() {
	It("expands to user then assistant messages", func() {
		turn := llm.Turn{User: llm.UserMessage("Hi"), Assistant: llm.AssistantMessage("Hello")}

		Expect(turn.Messages()).To(Equal([]llm.Message{
			{Role: llm.RoleUser, Content: "Hi"},
			{Role: llm.RoleAssistant, Content: "Hello"},
		}))
	})
})
