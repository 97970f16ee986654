package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/auditkit/invaudit/pkg/audit"
	iaerrors "github.com/auditkit/invaudit/pkg/errors"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/report"
)

// saveAndIndex files a passed invoice under the processed directory and
// indexes the sealed report. Persistence failures are fatal for the
// invoice; there is no retry.
func (p *Pipeline) saveAndIndex(ctx context.Context, st *State, logger logging.Logger) error {
	p.events.Emit(st.InvoiceID, audit.StageSaveIndex, audit.StatusStarted, "")

	if err := p.persistArtifacts(st, p.dirs.Processed); err != nil {
		p.events.Emit(st.InvoiceID, audit.StageSaveIndex, audit.StatusError, err.Error())
		logger.Error("Filing accepted invoice failed", logging.Err(err))
		return err
	}

	// The relocated sidecar is authoritative from here on.
	meta, err := invoice.ReadMetadata(filepath.Join(st.OutputDir, filepath.Base(st.FilePath)))
	if err == nil {
		st.Metadata = meta
	}

	p.events.Emit(st.InvoiceID, audit.StageIndexing, audit.StatusStarted, "")
	if err := p.index.IndexInvoice(ctx, st.InvoiceID, st.Report); err != nil {
		err = fmt.Errorf("indexing invoice %s: %w", st.InvoiceID, err)
		p.events.Emit(st.InvoiceID, audit.StageIndexing, audit.StatusError, err.Error())
		logger.Error("Indexing failed", logging.Err(err))
		return err
	}
	st.Indexed = true
	p.events.Emit(st.InvoiceID, audit.StageIndexing, audit.StatusCompleted, "")

	p.events.Emit(st.InvoiceID, audit.StageSaveIndex, audit.StatusCompleted, st.OutputDir)
	return nil
}

// saveAndFail files the invoice under the review directory. It never
// indexes; human-reviewed invoices are indexed by the review workflow.
func (p *Pipeline) saveAndFail(ctx context.Context, st *State, logger logging.Logger) error {
	p.events.Emit(st.InvoiceID, audit.StageSaveFail, audit.StatusStarted, "")

	if err := p.persistArtifacts(st, p.dirs.Review); err != nil {
		p.events.Emit(st.InvoiceID, audit.StageSaveFail, audit.StatusError, err.Error())
		logger.Error("Filing invoice for review failed", logging.Err(err))
		return err
	}

	p.events.Emit(st.InvoiceID, audit.StageSaveFail, audit.StatusCompleted, st.OutputDir)
	return nil
}

// persistArtifacts creates the invoice directory under base, writes the
// JSON and HTML reports into it, then moves the document and its sidecar
// in. Reports are written before the move so a partial failure leaves the
// source file in the inbox rather than stranded without a report.
// Failures wrap ErrPersistence; they are fatal for the invoice and are
// not retried.
func (p *Pipeline) persistArtifacts(st *State, base string) error {
	if err := p.fileArtifacts(st, base); err != nil {
		return fmt.Errorf("%w: %w", iaerrors.ErrPersistence, err)
	}
	return nil
}

func (p *Pipeline) fileArtifacts(st *State, base string) error {
	target := filepath.Join(base, st.InvoiceID)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("creating invoice dir: %w", err)
	}

	if err := report.WriteJSON(filepath.Join(target, invoice.ReportFilename(st.InvoiceID)), st.Report); err != nil {
		return err
	}
	if err := report.WriteHTML(filepath.Join(target, invoice.HTMLReportFilename(st.InvoiceID)), st.Report); err != nil {
		return err
	}

	if err := moveFile(st.FilePath, filepath.Join(target, filepath.Base(st.FilePath))); err != nil {
		return fmt.Errorf("moving document: %w", err)
	}

	metaSrc := invoice.MetadataPath(st.FilePath)
	if _, err := os.Stat(metaSrc); err == nil {
		if err := moveFile(metaSrc, filepath.Join(target, invoice.MetadataFilename(st.InvoiceID))); err != nil {
			return fmt.Errorf("moving sidecar: %w", err)
		}
	}

	st.OutputDir = target
	return nil
}

// moveFile renames src to dst, falling back to copy-and-delete when the
// rename crosses filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
