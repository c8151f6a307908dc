package speech_test

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/speech"
)

var _ = Describe("CommandRecorder", func() {
	var (
		dir string
		rec *speech.CommandRecorder
	)

	newRecorder := func(argv ...string) *speech.CommandRecorder {
		r, err := speech.NewCommandRecorder(argv, dir, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(r.Close)
		return r
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		rec = newRecorder("sh", "-c", "printf audio > {file}; exec sleep 10")
	})

	It("rejects an empty command", func() {
		_, err := speech.NewCommandRecorder(nil, dir, zap.NewNop())
		Expect(err).To(MatchError(speech.ErrUnavailable))
	})

	It("records to a uniquely named file", func() {
		Expect(rec.StartRecording()).To(BeTrue())
		Expect(rec.IsRecording()).To(BeTrue())

		Eventually(func() ([]string, error) {
			return filepath.Glob(filepath.Join(dir, "*.wav"))
		}).Should(HaveLen(1))

		recording, err := rec.StopRecording()
		Expect(err).NotTo(HaveOccurred())
		Expect(rec.IsRecording()).To(BeFalse())

		Expect(recording.ID).NotTo(BeEmpty())
		Expect(filepath.Base(recording.Path)).To(Equal(recording.ID + ".wav"))
		Expect(os.ReadFile(recording.Path)).To(Equal([]byte("audio")))
		Expect(recording.Duration).To(BeNumerically(">", 0))
	})

	It("refuses to start twice", func() {
		Expect(rec.StartRecording()).To(BeTrue())
		Expect(rec.StartRecording()).To(BeFalse())
	})

	It("returns ErrNotRecording when idle", func() {
		_, err := rec.StopRecording()
		Expect(err).To(MatchError(speech.ErrNotRecording))
	})

	It("returns ErrNoAudio when nothing was captured", func() {
		rec = newRecorder("sleep", "10")

		Expect(rec.StartRecording()).To(BeTrue())
		_, err := rec.StopRecording()
		Expect(err).To(MatchError(speech.ErrNoAudio))
	})

	It("returns false when the program cannot start", func() {
		rec = newRecorder("/nonexistent/voicechat-recorder")
		Expect(rec.StartRecording()).To(BeFalse())
		Expect(rec.IsRecording()).To(BeFalse())
	})

	It("discards the running capture on Close", func() {
		Expect(rec.StartRecording()).To(BeTrue())
		Eventually(func() ([]string, error) {
			return filepath.Glob(filepath.Join(dir, "*.wav"))
		}).Should(HaveLen(1))

		Expect(rec.Close()).To(Succeed())
		Expect(rec.IsRecording()).To(BeFalse())
		Expect(filepath.Glob(filepath.Join(dir, "*.wav"))).To(BeEmpty())
	})

	It("removes the recording file", func() {
		Expect(rec.StartRecording()).To(BeTrue())
		Eventually(func() ([]string, error) {
			return filepath.Glob(filepath.Join(dir, "*.wav"))
		}, time.Second).Should(HaveLen(1))
		recording, err := rec.StopRecording()
		Expect(err).NotTo(HaveOccurred())

		Expect(recording.Remove()).To(Succeed())
		_, err = os.Stat(recording.Path)
		Expect(os.IsNotExist(err)).To(BeTrue())
		Expect(recording.Remove()).To(Succeed())
	})
})

var _ = Describe("CommandTranscriber", func() {
	var recording *speech.Recording

	BeforeEach(func() {
		path := filepath.Join(GinkgoT().TempDir(), "take.wav")
		Expect(os.WriteFile(path, []byte("  hello world \n"), 0o600)).To(Succeed())
		recording = &speech.Recording{ID: "take", Path: path}
	})

	It("returns the trimmed program output", func() {
		tr, err := speech.NewCommandTranscriber([]string{"cat", "{file}"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		text, err := tr.Transcribe(ctx(), recording)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("hello world"))
	})

	It("returns ErrNoSpeech for blank output", func() {
		tr, err := speech.NewCommandTranscriber([]string{"true", "{file}"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		_, err = tr.Transcribe(ctx(), recording)
		Expect(err).To(MatchError(speech.ErrNoSpeech))
	})

	It("wraps program failures", func() {
		tr, err := speech.NewCommandTranscriber([]string{"sh", "-c", "echo boom >&2; exit 3"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		_, err = tr.Transcribe(ctx(), recording)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(HavePrefix("running sh"))
	})

	It("returns ErrNoAudio without a recording", func() {
		tr, err := speech.NewCommandTranscriber([]string{"cat", "{file}"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		_, err = tr.Transcribe(ctx(), nil)
		Expect(err).To(MatchError(speech.ErrNoAudio))
	})

	It("substitutes placeholders inside arguments", func() {
		tr, err := speech.NewCommandTranscriber([]string{"sh", "-c", "cat -- \"$1\"", "sh", "{file}"}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())

		text, err := tr.Transcribe(ctx(), recording)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Fields(text)).To(Equal([]string{"hello", "world"}))
	})
})
