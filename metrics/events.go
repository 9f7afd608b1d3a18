package metrics

// Event payloads for the four metric streams. Field names on the wire are a
// compatibility contract: the JSONL logs are consumed by existing dashboards
// and must not be renamed.

// PromptEvent records one model response as seen by the orchestrator.
type PromptEvent struct {
	Timestamp       string                 `json:"timestamp"`
	QualityScore    float64                `json:"response_quality_score"`
	FormatCompliant bool                   `json:"format_compliant"`
	Refused         bool                   `json:"refused"`
	ResponseLength  int                    `json:"response_length"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// RetrievalEvent records one long-term memory retrieval. Exactly one event
// is emitted per retrieval call, including failed and empty ones.
type RetrievalEvent struct {
	Timestamp        string                 `json:"timestamp"`
	ConfidenceScores []float64              `json:"retrieval_confidence_scores"`
	ChunksRetrieved  int                    `json:"num_chunks_retrieved"`
	SourceDiversity  int                    `json:"source_diversity"`
	Latency          float64                `json:"retrieval_latency"`
	Metadata         map[string]interface{} `json:"metadata"`
}

// AgentEvent records one completed (or failed) agent task.
type AgentEvent struct {
	Timestamp     string                 `json:"timestamp"`
	TaskCompleted bool                   `json:"task_completed"`
	Steps         int                    `json:"steps_to_completion"`
	ToolCalls     map[string]int         `json:"tool_calls"`
	ToolSuccesses map[string]int         `json:"tool_successes"`
	ErrorType     string                 `json:"error_type,omitempty"`
	Cost          float64                `json:"cost_per_task"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// SystemEvent records one end-to-end request.
type SystemEvent struct {
	Timestamp    string                 `json:"timestamp"`
	TaskSuccess  bool                   `json:"task_success"`
	Latency      float64                `json:"latency"`
	Cost         float64                `json:"cost_per_request"`
	Error        bool                   `json:"error"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata"`
}
