package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/auditkit/invaudit/pkg/audit"
	"github.com/auditkit/invaudit/pkg/invoice"
	"github.com/auditkit/invaudit/pkg/logging"
	"github.com/auditkit/invaudit/pkg/metrics"
	"github.com/auditkit/invaudit/pkg/report"
	"github.com/auditkit/invaudit/pkg/rules"
	"github.com/auditkit/invaudit/pkg/vector"
)

// Dirs is the directory taxonomy the pipeline files invoices into.
type Dirs struct {
	// Processed receives auto-accepted invoices.
	Processed string
	// Review receives invoices that need a human decision.
	Review string
}

// Validator evaluates an invoice and returns the ordered finding sequence.
// Satisfied by *rules.Engine.
type Validator interface {
	Validate(ctx context.Context, inv *invoice.Invoice) []invoice.RuleFinding
}

// Pipeline runs the full audit workflow for one invoice document. A
// Pipeline is safe for concurrent use; each Run owns its State exclusively.
type Pipeline struct {
	text       TextExtractor
	structured StructuredExtractor
	translator Translator
	validator  Validator
	assembler  *report.Assembler
	index      vector.Index
	dirs       Dirs
	events     audit.Sink
	logger     logging.Logger
}

// Deps carries the pipeline's collaborators.
type Deps struct {
	Text       TextExtractor
	Structured StructuredExtractor
	Translator Translator
	Validator  Validator
	Assembler  *report.Assembler
	Index      vector.Index
	Dirs       Dirs
	Events     audit.Sink
	Logger     logging.Logger
}

// New creates a pipeline. All collaborators are injected; none are
// constructed here.
func New(deps Deps) *Pipeline {
	if deps.Events == nil {
		deps.Events = audit.NopSink{}
	}
	if deps.Index == nil {
		deps.Index = vector.NopIndex{}
	}
	if deps.Logger == nil {
		deps.Logger = logging.MustGlobal()
	}
	return &Pipeline{
		text:       deps.Text,
		structured: deps.Structured,
		translator: deps.Translator,
		validator:  deps.Validator,
		assembler:  deps.Assembler,
		index:      deps.Index,
		dirs:       deps.Dirs,
		events:     deps.Events,
		logger:     deps.Logger.With(logging.F("component", "pipeline")),
	}
}

// Run processes one invoice document end to end. It always produces report
// artifacts in either the processed or the review directory; the returned
// error reports persistence failures only — a failed validation is a
// normal, error-free run that routes to review.
func (p *Pipeline) Run(ctx context.Context, path string) (*State, error) {
	st := &State{
		FilePath:  path,
		InvoiceID: invoice.IDFromPath(path),
	}
	logger := p.logger.With(logging.F("invoice_id", st.InvoiceID))

	meta, err := invoice.ReadMetadata(path)
	if err != nil {
		// A broken sidecar degrades to defaults; the document itself
		// still gets audited.
		logger.Warn("Unreadable sidecar metadata, using defaults", logging.Err(err))
	}
	st.Metadata = meta

	p.extraction(ctx, st, logger)
	p.translation(ctx, st, logger)
	p.validation(ctx, st, logger)
	p.reportGeneration(ctx, st, logger)

	outcome := Route(st)
	p.events.Emit(st.InvoiceID, audit.StageRouting, audit.StatusCompleted, string(outcome))

	var persistErr error
	if outcome == OutcomeSuccess {
		persistErr = p.saveAndIndex(ctx, st, logger)
	} else {
		persistErr = p.saveAndFail(ctx, st, logger)
	}
	if persistErr != nil {
		metrics.InvoicesProcessed.WithLabelValues(metrics.OutcomeError).Inc()
		if st.Err == nil {
			st.Err = persistErr
		}
		return st, persistErr
	}
	if outcome == OutcomeSuccess {
		metrics.InvoicesProcessed.WithLabelValues(metrics.OutcomeAccepted).Inc()
	} else {
		metrics.InvoicesProcessed.WithLabelValues(metrics.OutcomeReview).Inc()
	}

	for _, f := range st.Findings {
		metrics.FindingsTotal.WithLabelValues(string(f.Status)).Inc()
	}

	logger.Info("Pipeline finished",
		logging.F("outcome", string(outcome)),
		logging.F("output_dir", st.OutputDir),
		logging.F("indexed", st.Indexed))
	return st, nil
}

// extraction calls the text and structured extractors. Any failure is
// recorded on the state and the run continues, so a report still gets
// generated for the broken document.
func (p *Pipeline) extraction(ctx context.Context, st *State, logger logging.Logger) {
	p.events.Emit(st.InvoiceID, audit.StageExtraction, audit.StatusStarted, "")

	text, err := p.text.Extract(ctx, st.FilePath)
	if err != nil {
		st.Err = fmt.Errorf("text extraction: %w", err)
		p.events.Emit(st.InvoiceID, audit.StageExtraction, audit.StatusError, st.Err.Error())
		logger.Error("Text extraction failed", logging.Err(err))
		return
	}
	if strings.TrimSpace(text) == "" {
		st.Err = fmt.Errorf("document %s produced no text content", st.FilePath)
		p.events.Emit(st.InvoiceID, audit.StageExtraction, audit.StatusError, st.Err.Error())
		logger.Warn("Document has no extractable text")
		return
	}

	extracted, err := p.structured.ExtractStructured(ctx, text, st.FilePath)
	if err != nil {
		st.Err = fmt.Errorf("structured extraction: %w", err)
		p.events.Emit(st.InvoiceID, audit.StageExtraction, audit.StatusError, st.Err.Error())
		logger.Error("Structured extraction failed", logging.Err(err))
		return
	}
	if extracted.Error != "" {
		st.Err = fmt.Errorf("structured extraction: %s", extracted.Error)
		p.events.Emit(st.InvoiceID, audit.StageExtraction, audit.StatusError, st.Err.Error())
		return
	}
	extracted.OriginalFilename = st.FilePath

	st.Extracted = extracted
	p.events.Emit(st.InvoiceID, audit.StageExtraction, audit.StatusCompleted, "")
}

// translation translates the extracted fields when the sidecar language
// hint is not English. An English hint (or none) is an explicit fast path:
// the translator is not called and confidence is fixed at 1.0.
func (p *Pipeline) translation(ctx context.Context, st *State, logger logging.Logger) {
	if st.Failed() {
		p.events.Emit(st.InvoiceID, audit.StageTranslation, audit.StatusSkipped, "no extracted data")
		return
	}
	p.events.Emit(st.InvoiceID, audit.StageTranslation, audit.StatusStarted, st.Metadata.Language)

	if isEnglish(st.Metadata.Language) {
		conf := 1.0
		st.Invoice = st.Extracted
		st.TranslationConfidence = &conf
		p.events.Emit(st.InvoiceID, audit.StageTranslation, audit.StatusSkipped, "source already English")
		return
	}

	translated := *st.Extracted
	translated.LineItems = append([]invoice.LineItem(nil), st.Extracted.LineItems...)

	var confidences []float64
	translateField := func(field *string) bool {
		if *field == "" {
			return true
		}
		res, err := p.translator.Translate(ctx, *field)
		if err != nil {
			return false
		}
		*field = res.Text
		if res.Confidence != nil {
			confidences = append(confidences, *res.Confidence)
		}
		return true
	}

	ok := translateField(&translated.VendorName)
	ok = translateField(&translated.CustomerName) && ok
	for i := range translated.LineItems {
		ok = translateField(&translated.LineItems[i].Description) && ok
	}

	if !ok {
		// A translator failure keeps the untranslated fields; validation
		// still runs on the original text rather than aborting.
		logger.Warn("Translation degraded, validating untranslated fields")
		p.events.Emit(st.InvoiceID, audit.StageTranslation, audit.StatusError, "translator failure, using source text")
		st.Invoice = st.Extracted
		return
	}

	st.Invoice = &translated
	if len(confidences) > 0 {
		mean := 0.0
		for _, c := range confidences {
			mean += c
		}
		mean /= float64(len(confidences))
		st.TranslationConfidence = &mean
	}
	p.events.Emit(st.InvoiceID, audit.StageTranslation, audit.StatusCompleted,
		fmt.Sprintf("translated from %s", st.Metadata.Language))
}

// validation runs the rule engine. Missing invoice data synthesizes one
// FAILED finding so the report is never empty of findings.
func (p *Pipeline) validation(ctx context.Context, st *State, logger logging.Logger) {
	p.events.Emit(st.InvoiceID, audit.StageValidation, audit.StatusStarted, "")

	if st.Invoice == nil {
		msg := "No invoice data available for validation."
		if st.Err != nil {
			msg = fmt.Sprintf("No invoice data available for validation: %v", st.Err)
		}
		st.Findings = []invoice.RuleFinding{{
			RuleName: "Validation Error",
			Status:   invoice.FindingFailed,
			Message:  msg,
			Source:   invoice.SourceInternal,
		}}
		st.ValidationStatus = invoice.StatusFailed
		p.events.Emit(st.InvoiceID, audit.StageValidation, audit.StatusError, msg)
		return
	}

	st.Findings = p.validator.Validate(ctx, st.Invoice)
	st.ValidationStatus = rules.OverallStatus(st.Findings)
	p.events.Emit(st.InvoiceID, audit.StageValidation, audit.StatusCompleted, string(st.ValidationStatus))
}

// reportGeneration always runs. When nothing useful was extracted it builds
// a stub invoice carrying the error so the artifact still identifies the
// document and the failure.
func (p *Pipeline) reportGeneration(ctx context.Context, st *State, logger logging.Logger) {
	p.events.Emit(st.InvoiceID, audit.StageReport, audit.StatusStarted, "")

	inv := st.Invoice
	if inv == nil {
		inv = &invoice.Invoice{
			InvoiceID:        st.InvoiceID,
			OriginalFilename: st.FilePath,
		}
		if st.Err != nil {
			inv.Error = st.Err.Error()
		}
	}

	st.Report = p.assembler.Assemble(ctx, inv, st.Findings, st.TranslationConfidence)
	p.events.Emit(st.InvoiceID, audit.StageReport, audit.StatusCompleted,
		string(st.Report.AIAnalysis.Recommendation))
}

// isEnglish reports whether the sidecar language hint resolves to English.
// An absent or unparsable hint defaults to English.
func isEnglish(hint string) bool {
	if hint == "" {
		return true
	}
	tag, err := language.Parse(hint)
	if err != nil {
		return true
	}
	base, _ := tag.Base()
	enBase, _ := language.English.Base()
	return base == enBase
}
