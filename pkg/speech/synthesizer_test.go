package speech_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/config"
	"github.com/papercomputeco/voicechat/pkg/speech"
)

func ctx() context.Context {
	return context.Background()
}

var _ = Describe("CommandSynthesizer", func() {
	It("passes the text to the program and blocks until it exits", func() {
		out := filepath.Join(GinkgoT().TempDir(), "spoken.txt")
		syn, err := speech.NewCommandSynthesizer([]string{"sh", "-c", `printf %s "$1" > "$2"`, "sh", "{text}", out}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		Expect(syn.Speak("Hello there; rm -rf /", true)).To(Succeed())
		Expect(syn.IsBusy()).To(BeFalse())
		Expect(os.ReadFile(out)).To(Equal([]byte("Hello there; rm -rf /")))
	})

	It("returns immediately when not blocking and can be stopped", func() {
		syn, err := speech.NewCommandSynthesizer([]string{"sleep", "10"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(syn.Close)

		Expect(syn.Speak("long reply", false)).To(Succeed())
		Expect(syn.IsBusy()).To(BeTrue())

		Expect(syn.StopSpeaking()).To(Succeed())
		Expect(syn.IsBusy()).To(BeFalse())
	})

	It("interrupts the current narration on a new call", func() {
		syn, err := speech.NewCommandSynthesizer([]string{"sleep", "10"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(syn.Close)

		done := make(chan error, 1)
		go func() {
			done <- syn.Speak("first", true)
		}()
		Eventually(syn.IsBusy).Should(BeTrue())

		Expect(syn.Speak("second", false)).To(Succeed())
		Eventually(done).Should(Receive(BeNil()))
		Expect(syn.IsBusy()).To(BeTrue())
	})

	It("reports program failures when blocking", func() {
		syn, err := speech.NewCommandSynthesizer([]string{"false"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(syn.Speak("anything", true)).To(HaveOccurred())
	})

	It("ignores empty text", func() {
		syn, err := speech.NewCommandSynthesizer([]string{"false"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		Expect(syn.Speak("", true)).To(Succeed())
	})
})

var _ = Describe("disabled collaborators", func() {
	It("never record", func() {
		var rec speech.Recorder = speech.DisabledRecorder{}
		Expect(rec.StartRecording()).To(BeFalse())
		_, err := rec.StopRecording()
		Expect(err).To(MatchError(speech.ErrUnavailable))
	})

	It("never transcribe", func() {
		_, err := speech.DisabledTranscriber{}.Transcribe(ctx(), &speech.Recording{})
		Expect(err).To(MatchError(speech.ErrUnavailable))
	})

	It("stay silent", func() {
		syn := speech.SilentSynthesizer{Logger: zap.NewNop()}
		Expect(syn.Speak("hello", true)).To(Succeed())
		Expect(syn.IsBusy()).To(BeFalse())
	})
})

var _ = Describe("Components", func() {
	It("falls back to disabled collaborators", func() {
		c, err := speech.NewComponents(config.SpeechConfig{}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Initialized()).To(BeFalse())
		Expect(c.Recorder).To(BeAssignableToTypeOf(speech.DisabledRecorder{}))
		Expect(c.Transcriber).To(BeAssignableToTypeOf(speech.DisabledTranscriber{}))
		Expect(c.Synthesizer).To(BeAssignableToTypeOf(speech.SilentSynthesizer{}))
		Expect(c.Close()).To(Succeed())
	})

	It("builds command-backed collaborators", func() {
		c, err := speech.NewComponents(config.SpeechConfig{
			RecordCommand:     []string{"sleep", "10"},
			TranscribeCommand: []string{"cat", "{file}"},
			SpeakCommand:      []string{"true"},
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		Expect(c.Initialized()).To(BeTrue())
		Expect(c.Recorder).To(BeAssignableToTypeOf(&speech.CommandRecorder{}))
		Expect(c.Transcriber).To(BeAssignableToTypeOf(&speech.CommandTranscriber{}))
		Expect(c.Synthesizer).To(BeAssignableToTypeOf(&speech.CommandSynthesizer{}))

		dir := c.Recorder.(*speech.CommandRecorder).Dir()
		Expect(dir).To(BeADirectory())
		Expect(c.Close()).To(Succeed())
		Expect(dir).NotTo(BeADirectory())
	})
})
