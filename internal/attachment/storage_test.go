package attachment_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/expense-reports/internal/attachment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalFileStorage", func() {
	var (
		baseDir string
		storage *attachment.LocalFileStorage
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		baseDir = GinkgoT().TempDir()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		storage = attachment.NewLocalFileStorage(baseDir, logger)
	})

	It("should store a file under the owner directory and read it back", func() {
		stored, err := storage.Store(ctx, "exp-1", "receipt.pdf", strings.NewReader("pdf bytes"))
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Size).To(Equal(int64(9)))
		Expect(stored.Name).To(Equal("receipt.pdf"))
		Expect(stored.Path).To(HavePrefix("exp-1" + string(filepath.Separator)))
		Expect(stored.Path).To(HaveSuffix("-receipt.pdf"))

		rc, err := storage.Open(ctx, stored.Path)
		Expect(err).NotTo(HaveOccurred())
		defer rc.Close()
		content, err := io.ReadAll(rc)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(Equal("pdf bytes"))
	})

	It("should keep two uploads with the same name apart", func() {
		first, err := storage.Store(ctx, "exp-1", "receipt.pdf", strings.NewReader("a"))
		Expect(err).NotTo(HaveOccurred())
		second, err := storage.Store(ctx, "exp-1", "receipt.pdf", strings.NewReader("b"))
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Path).NotTo(Equal(second.Path))
	})

	It("should strip directory components from the file name", func() {
		stored, err := storage.Store(ctx, "exp-1", "../../etc/passwd", strings.NewReader("x"))
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.Name).To(Equal("passwd"))

		full := filepath.Join(baseDir, stored.Path)
		Expect(full).To(BeAnExistingFile())
	})

	It("should refuse paths that escape the base directory", func() {
		_, err := storage.Open(ctx, "../outside.txt")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("escapes base directory"))

		Expect(storage.Delete(ctx, "../../outside.txt")).NotTo(Succeed())
	})

	It("should delete files idempotently", func() {
		stored, err := storage.Store(ctx, "exp-1", "note.txt", strings.NewReader("x"))
		Expect(err).NotTo(HaveOccurred())

		Expect(storage.Delete(ctx, stored.Path)).To(Succeed())
		Expect(filepath.Join(baseDir, stored.Path)).NotTo(BeAnExistingFile())
		Expect(storage.Delete(ctx, stored.Path)).To(Succeed())
	})
})
