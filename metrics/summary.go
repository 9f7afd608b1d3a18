package metrics

import (
	"fmt"
	"io"
	"sort"
)

// WriteSummary renders a human-readable report of the current snapshot.
func (a *Aggregator) WriteSummary(w io.Writer) {
	snap := a.Aggregated()

	line := "============================================================"
	fmt.Fprintf(w, "\n%s\n", line)
	fmt.Fprintln(w, "METRICS SUMMARY")
	fmt.Fprintln(w, line)

	fmt.Fprintln(w, "\nPROMPTS:")
	if snap.Prompts.TotalRequests > 0 {
		fmt.Fprintf(w, "  total requests:        %d\n", snap.Prompts.TotalRequests)
		fmt.Fprintf(w, "  avg quality score:     %.2f\n", snap.Prompts.AverageQualityScore)
		fmt.Fprintf(w, "  format compliance:     %.2f%%\n", snap.Prompts.FormatComplianceRate*100)
		fmt.Fprintf(w, "  refusal rate:          %.2f%%\n", snap.Prompts.RefusalRate*100)
		fmt.Fprintf(w, "  avg response length:   %.0f chars\n", snap.Prompts.AverageResponseLength)
	}

	fmt.Fprintln(w, "\nRETRIEVAL:")
	if snap.Retrieval.TotalRetrievals > 0 {
		fmt.Fprintf(w, "  total retrievals:      %d\n", snap.Retrieval.TotalRetrievals)
		fmt.Fprintf(w, "  avg confidence score:  %.2f\n", snap.Retrieval.AverageConfidenceScore)
		fmt.Fprintf(w, "  avg chunks retrieved:  %.1f\n", snap.Retrieval.AverageChunksRetrieved)
		fmt.Fprintf(w, "  avg source diversity:  %.1f\n", snap.Retrieval.AverageSourceDiversity)
		fmt.Fprintf(w, "  avg latency:           %.3fs\n", snap.Retrieval.AverageRetrievalLatency)
	}

	fmt.Fprintln(w, "\nAGENTS:")
	if snap.Agents.TotalTasks > 0 {
		fmt.Fprintf(w, "  total tasks:           %d\n", snap.Agents.TotalTasks)
		fmt.Fprintf(w, "  task completion rate:  %.2f%%\n", snap.Agents.TaskCompletionRate*100)
		fmt.Fprintf(w, "  avg steps:             %.1f\n", snap.Agents.AverageSteps)
		fmt.Fprintf(w, "  avg cost per task:     $%.4f\n", snap.Agents.AverageCostPerTask)
		if len(snap.Agents.ToolSuccessRates) > 0 {
			fmt.Fprintln(w, "  tool success rates:")
			for _, name := range sortedKeys(snap.Agents.ToolSuccessRates) {
				fmt.Fprintf(w, "    - %s: %.2f%%\n", name, snap.Agents.ToolSuccessRates[name]*100)
			}
		}
		if len(snap.Agents.Errors) > 0 {
			fmt.Fprintln(w, "  errors:")
			for _, name := range sortedKeys(snap.Agents.Errors) {
				fmt.Fprintf(w, "    - %s: %d\n", name, snap.Agents.Errors[name])
			}
		}
	}

	fmt.Fprintln(w, "\nSYSTEM:")
	if snap.System.TotalRequests > 0 {
		fmt.Fprintf(w, "  total requests:        %d\n", snap.System.TotalRequests)
		fmt.Fprintf(w, "  task success rate:     %.2f%%\n", snap.System.TaskSuccessRate*100)
		fmt.Fprintf(w, "  avg latency:           %.3fs\n", snap.System.AverageLatency)
		fmt.Fprintf(w, "  avg cost per request:  $%.4f\n", snap.System.AverageCostPerRequest)
		fmt.Fprintf(w, "  error rate:            %.2f%%\n", snap.System.ErrorRate*100)
		fmt.Fprintf(w, "  uptime:                %.2f hours\n", snap.System.UptimeSeconds/3600)
	}

	fmt.Fprintf(w, "%s\n\n", line)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
