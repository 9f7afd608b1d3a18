package metrics

// Snapshot is a point-in-time view of all four aggregates, including derived
// ratios. JSON keys mirror the stream log contract.
type Snapshot struct {
	Prompts   PromptStats    `json:"prompts"`
	Retrieval RetrievalStats `json:"retrieval"`
	Agents    AgentStats     `json:"agents"`
	System    SystemStats    `json:"system"`
}

// PromptStats aggregates the prompt stream.
type PromptStats struct {
	TotalRequests         int       `json:"total_requests"`
	TotalRefusals         int       `json:"total_refusals"`
	TotalResponseLength   int       `json:"total_response_length"`
	FormatComplianceCount int       `json:"format_compliance_count"`
	QualityScores         []float64 `json:"quality_scores"`

	// Derived, recomputed on every snapshot.
	AverageResponseLength float64 `json:"average_response_length"`
	RefusalRate           float64 `json:"refusal_rate"`
	FormatComplianceRate  float64 `json:"format_compliance_rate"`
	AverageQualityScore   float64 `json:"average_quality_score"`
}

// RetrievalStats aggregates the retrieval stream.
type RetrievalStats struct {
	TotalRetrievals       int       `json:"total_retrievals"`
	TotalChunksRetrieved  int       `json:"total_chunks_retrieved"`
	TotalRetrievalLatency float64   `json:"total_retrieval_latency"`
	ConfidenceScores      []float64 `json:"confidence_scores"`
	SourceDiversity       []int     `json:"source_diversity"`

	AverageChunksRetrieved  float64 `json:"average_chunks_retrieved"`
	AverageRetrievalLatency float64 `json:"average_retrieval_latency"`
	AverageConfidenceScore  float64 `json:"average_confidence_score"`
	AverageSourceDiversity  float64 `json:"average_source_diversity"`
}

// AgentStats aggregates the agent stream.
type AgentStats struct {
	TotalTasks     int            `json:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	TotalSteps     int            `json:"total_steps"`
	ToolCalls      map[string]int `json:"tool_calls"`
	ToolSuccesses  map[string]int `json:"tool_successes"`
	Errors         map[string]int `json:"errors"`
	TotalCost      float64        `json:"total_cost"`

	TaskCompletionRate float64            `json:"task_completion_rate"`
	AverageSteps       float64            `json:"average_steps_to_completion"`
	AverageCostPerTask float64            `json:"average_cost_per_task"`
	ToolSuccessRates   map[string]float64 `json:"tool_success_rates"`
}

// SystemStats aggregates the system stream.
type SystemStats struct {
	TotalRequests      int     `json:"total_requests"`
	SuccessfulRequests int     `json:"successful_requests"`
	TotalLatency       float64 `json:"total_latency"`
	TotalCost          float64 `json:"total_cost"`
	Errors             int     `json:"errors"`
	StartTime          string  `json:"start_time"`
	UptimeSeconds      float64 `json:"uptime_seconds"`

	TaskSuccessRate       float64 `json:"task_success_rate"`
	AverageLatency        float64 `json:"average_latency"`
	AverageCostPerRequest float64 `json:"average_cost_per_request"`
	ErrorRate             float64 `json:"error_rate"`
}

func (p PromptStats) clone() PromptStats {
	out := p
	out.QualityScores = append([]float64(nil), p.QualityScores...)
	return out
}

func (r RetrievalStats) clone() RetrievalStats {
	out := r
	out.ConfidenceScores = append([]float64(nil), r.ConfidenceScores...)
	out.SourceDiversity = append([]int(nil), r.SourceDiversity...)
	return out
}

func (a AgentStats) clone() AgentStats {
	out := a
	out.ToolCalls = cloneCounts(a.ToolCalls)
	out.ToolSuccesses = cloneCounts(a.ToolSuccesses)
	out.Errors = cloneCounts(a.Errors)
	return out
}

func cloneCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// derive fills in every derived ratio from the running totals, guarding all
// zero denominators.
func (s *Snapshot) derive() {
	if n := s.Prompts.TotalRequests; n > 0 {
		s.Prompts.AverageResponseLength = float64(s.Prompts.TotalResponseLength) / float64(n)
		s.Prompts.RefusalRate = float64(s.Prompts.TotalRefusals) / float64(n)
		s.Prompts.FormatComplianceRate = float64(s.Prompts.FormatComplianceCount) / float64(n)
	}
	if n := len(s.Prompts.QualityScores); n > 0 {
		s.Prompts.AverageQualityScore = sumFloats(s.Prompts.QualityScores) / float64(n)
	}

	if n := s.Retrieval.TotalRetrievals; n > 0 {
		s.Retrieval.AverageChunksRetrieved = float64(s.Retrieval.TotalChunksRetrieved) / float64(n)
		s.Retrieval.AverageRetrievalLatency = s.Retrieval.TotalRetrievalLatency / float64(n)
	}
	if n := len(s.Retrieval.ConfidenceScores); n > 0 {
		s.Retrieval.AverageConfidenceScore = sumFloats(s.Retrieval.ConfidenceScores) / float64(n)
	}
	if n := len(s.Retrieval.SourceDiversity); n > 0 {
		var total int
		for _, d := range s.Retrieval.SourceDiversity {
			total += d
		}
		s.Retrieval.AverageSourceDiversity = float64(total) / float64(n)
	}

	s.Agents.ToolSuccessRates = make(map[string]float64, len(s.Agents.ToolCalls))
	if n := s.Agents.TotalTasks; n > 0 {
		s.Agents.TaskCompletionRate = float64(s.Agents.CompletedTasks) / float64(n)
		s.Agents.AverageSteps = float64(s.Agents.TotalSteps) / float64(n)
		s.Agents.AverageCostPerTask = s.Agents.TotalCost / float64(n)
	}
	for name, calls := range s.Agents.ToolCalls {
		if calls > 0 {
			s.Agents.ToolSuccessRates[name] = float64(s.Agents.ToolSuccesses[name]) / float64(calls)
		} else {
			s.Agents.ToolSuccessRates[name] = 0
		}
	}

	if n := s.System.TotalRequests; n > 0 {
		s.System.TaskSuccessRate = float64(s.System.SuccessfulRequests) / float64(n)
		s.System.AverageLatency = s.System.TotalLatency / float64(n)
		s.System.AverageCostPerRequest = s.System.TotalCost / float64(n)
		s.System.ErrorRate = float64(s.System.Errors) / float64(n)
	}
}

func sumFloats(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
