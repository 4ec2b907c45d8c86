package models

// PipelineRun owns the whole lifecycle of one analysis request. It is a plain value with no
// references back into the clients that produced it.
type PipelineRun struct {
	RequestedFrameworks []Framework       `json:"requested_frameworks" firestore:"requestedFrameworks"`
	SelectedFrameworks  []Framework       `json:"selected_frameworks" firestore:"selectedFrameworks"`
	Profile             *ExtractedProfile `json:"extracted_data" firestore:"extractedData"`
	ICO                 *FrameworkResult  `json:"ico_result" firestore:"icoResult"`
	DPA                 *FrameworkResult  `json:"dpa_result" firestore:"dpaResult"`
	EUAIAct             *FrameworkResult  `json:"eu_act_result" firestore:"euActResult"`
	ISO42001            *FrameworkResult  `json:"iso_result" firestore:"isoResult"`
	Synthesis           *Synthesis        `json:"synthesis" firestore:"synthesis"`
	StatusMessages      []string          `json:"status_messages" firestore:"statusMessages"`
	ReportContentType   string            `json:"report_content_type,omitempty" firestore:"reportContentType,omitempty"`
	ReportBytes         []byte            `json:"-" firestore:"-"`
}

// Result returns the stored result for a framework, or nil when it was not evaluated.
func (r *PipelineRun) Result(f Framework) *FrameworkResult {
	switch f {
	case FrameworkICO:
		return r.ICO
	case FrameworkDPA:
		return r.DPA
	case FrameworkEUAIAct:
		return r.EUAIAct
	case FrameworkISO42001:
		return r.ISO42001
	}
	return nil
}

// SetResult stores a result in the slot matching its framework.
func (r *PipelineRun) SetResult(res *FrameworkResult) {
	switch res.Framework {
	case FrameworkICO:
		r.ICO = res
	case FrameworkDPA:
		r.DPA = res
	case FrameworkEUAIAct:
		r.EUAIAct = res
	case FrameworkISO42001:
		r.ISO42001 = res
	}
}

// Results returns the evaluated results in synthesis order (ICO, DPA, EU AI Act, ISO 42001).
func (r *PipelineRun) Results() []*FrameworkResult {
	var out []*FrameworkResult
	for _, f := range AllFrameworks {
		if res := r.Result(f); res != nil {
			out = append(out, res)
		}
	}
	return out
}

// ForTransport returns a copy without the document text, suitable for API responses
// and persistence.
func (r *PipelineRun) ForTransport() *PipelineRun {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Profile = r.Profile.WithoutFullText()
	cp.StatusMessages = append([]string(nil), r.StatusMessages...)
	return &cp
}
