package console_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/console"
	"github.com/papercomputeco/voicechat/pkg/conversation"
	"github.com/papercomputeco/voicechat/pkg/history"
	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/openrouter"
	"github.com/papercomputeco/voicechat/pkg/speech"
)

// echoClient replies with a fixed prefix and the utterance.
type echoClient struct {
	inputs []string
}

func (e *echoClient) GenerateResponse(_ context.Context, userInput, _ string, _ []llm.Message) openrouter.Reply {
	e.inputs = append(e.inputs, userInput)
	return openrouter.Reply{Text: "echo: " + userInput}
}

type fakeRecorder struct {
	startOK   bool
	recording bool
	stopErr   error
}

func (f *fakeRecorder) StartRecording() bool {
	if !f.startOK {
		return false
	}
	f.recording = true
	return true
}

func (f *fakeRecorder) StopRecording() (*speech.Recording, error) {
	f.recording = false
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return &speech.Recording{ID: "take"}, nil
}

func (f *fakeRecorder) IsRecording() bool { return f.recording }
func (f *fakeRecorder) Close() error      { return nil }

type fakeTranscriber struct {
	text string
	err  error
}

func (f fakeTranscriber) Transcribe(context.Context, *speech.Recording) (string, error) {
	return f.text, f.err
}

type fakeSynthesizer struct {
	spoken   []string
	blocking []bool
}

func (f *fakeSynthesizer) Speak(text string, blocking bool) error {
	f.spoken = append(f.spoken, text)
	f.blocking = append(f.blocking, blocking)
	return nil
}

func (f *fakeSynthesizer) StopSpeaking() error { return nil }
func (f *fakeSynthesizer) IsBusy() bool        { return false }
func (f *fakeSynthesizer) Close() error        { return nil }

type fakeModels struct {
	list *llm.ModelList
}

func (f fakeModels) AvailableModels(context.Context) *llm.ModelList {
	return f.list
}

var _ = Describe("Console", func() {
	var (
		client      *echoClient
		store       *history.Store
		recorder    *fakeRecorder
		transcriber fakeTranscriber
		synthesizer *fakeSynthesizer
		models      fakeModels
		out         *bytes.Buffer
	)

	run := func(input string) error {
		c := console.New(console.Options{
			Conversation: conversation.New(client, store, zap.NewNop()),
			Models:       models,
			Recorder:     recorder,
			Transcriber:  transcriber,
			Synthesizer:  synthesizer,
			Input:        console.NewBufferedReader(strings.NewReader(input), out),
			Output:       out,
		})
		return c.Run(context.Background())
	}

	BeforeEach(func() {
		client = &echoClient{}
		store = history.New(history.DefaultMaxMessages)
		recorder = &fakeRecorder{startOK: true}
		transcriber = fakeTranscriber{text: "what time is it"}
		synthesizer = &fakeSynthesizer{}
		models = fakeModels{}
		out = &bytes.Buffer{}
	})

	It("prints the banner and exits on quit", func() {
		Expect(run("quit\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("VOICE CHATBOT - CONSOLE MODE"))
		Expect(out.String()).To(ContainSubstring("Goodbye!"))
		Expect(client.inputs).To(BeEmpty())
	})

	It("exits cleanly at end of input", func() {
		Expect(run("")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Exiting..."))
	})

	It("accepts commands in any case", func() {
		Expect(run("QUIT\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Goodbye!"))
	})

	It("sends a text message, prints and speaks the reply", func() {
		Expect(run("text\nHello there\nquit\n")).To(Succeed())

		Expect(client.inputs).To(Equal([]string{"Hello there"}))
		Expect(out.String()).To(ContainSubstring("AI: echo: Hello there"))
		Expect(synthesizer.spoken).To(Equal([]string{"echo: Hello there"}))
		Expect(synthesizer.blocking).To(Equal([]bool{true}))
		Expect(store.Len()).To(Equal(2))
	})

	It("reports blank messages without calling the model", func() {
		Expect(run("text\n   \nquit\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("No text provided."))
		Expect(client.inputs).To(BeEmpty())
		Expect(store.Len()).To(Equal(0))
	})

	It("records, transcribes and answers a voice message", func() {
		Expect(run("voice\n\nquit\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("You said: what time is it"))
		Expect(out.String()).To(ContainSubstring("AI: echo: what time is it"))
		Expect(client.inputs).To(Equal([]string{"what time is it"}))
		Expect(synthesizer.spoken).To(HaveLen(1))
		Expect(recorder.recording).To(BeFalse())
	})

	It("reports failed transcriptions", func() {
		transcriber = fakeTranscriber{err: speech.ErrNoSpeech}

		Expect(run("voice\n\nquit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No speech detected or transcription failed."))
		Expect(client.inputs).To(BeEmpty())
	})

	It("reports empty recordings", func() {
		recorder.stopErr = speech.ErrNoAudio

		Expect(run("voice\n\nquit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("No speech detected or transcription failed."))
	})

	It("reports when recording cannot start", func() {
		recorder.startOK = false

		Expect(run("voice\nquit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Could not start recording."))
	})

	It("clears the history", func() {
		Expect(run("text\nHi\nclear\nquit\n")).To(Succeed())

		Expect(out.String()).To(ContainSubstring("Conversation history cleared."))
		Expect(store.Len()).To(Equal(0))
	})

	It("lists models", func() {
		list := &llm.ModelList{}
		for i := 0; i < 25; i++ {
			list.Data = append(list.Data, llm.ModelInfo{ID: fmt.Sprintf("vendor/model-%02d", i)})
		}
		models = fakeModels{list: list}

		Expect(run("models\nquit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("25 models available:"))
		Expect(out.String()).To(ContainSubstring("vendor/model-19"))
		Expect(out.String()).NotTo(ContainSubstring("vendor/model-20"))
		Expect(out.String()).To(ContainSubstring("... and 5 more"))
	})

	It("reports model listing failures", func() {
		Expect(run("models\nquit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Could not fetch models."))
	})

	It("rejects unknown commands", func() {
		Expect(run("dance\nquit\n")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Invalid command."))
	})

	It("renders replies with the configured renderer", func() {
		c := console.New(console.Options{
			Conversation: conversation.New(client, store, zap.NewNop()),
			Input:        console.NewBufferedReader(strings.NewReader("text\nHi\nquit\n"), io.Discard),
			Output:       out,
			Render:       strings.ToUpper,
		})
		Expect(c.Run(context.Background())).To(Succeed())
		Expect(out.String()).To(ContainSubstring("AI: ECHO: HI"))
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := console.New(console.Options{
			Conversation: conversation.New(client, store, zap.NewNop()),
			Input:        console.NewBufferedReader(strings.NewReader("text\nHi\n"), io.Discard),
			Output:       out,
		})
		Expect(c.Run(ctx)).To(Succeed())
		Expect(client.inputs).To(BeEmpty())
	})
})

var _ = Describe("BufferedReader", func() {
	It("writes the prompt and strips line endings", func() {
		var prompts bytes.Buffer
		r := console.NewBufferedReader(strings.NewReader("one\r\ntwo"), &prompts)

		Expect(r.ReadLine("> ")).To(Equal("one"))
		Expect(r.ReadLine("> ")).To(Equal("two"))
		_, err := r.ReadLine("> ")
		Expect(err).To(MatchError(io.EOF))
		Expect(prompts.String()).To(Equal("> > > "))
	})
})

var _ = Describe("NewMarkdownRenderer", func() {
	It("renders markdown text", func() {
		render, err := console.NewMarkdownRenderer(console.DefaultWidth)
		Expect(err).NotTo(HaveOccurred())
		Expect(render("**bold** reply")).To(ContainSubstring("bold"))
	})
})
