package job

import "os"

// currentProgress folds the running action's progress into the whole-job
// scale. Every action is assumed to take an equal share of jobMaximum; the
// completed actions contribute whole shares and the running action a
// fraction of one share.
func currentProgress(completedActions, totalActions int, current, maximum, jobMaximum int64) int64 {
	if totalActions <= 0 {
		return 0
	}
	budget := jobMaximum / int64(totalActions)
	overall := int64(completedActions) * budget
	if maximum > 0 && current > 0 {
		if current > maximum {
			current = maximum
		}
		overall += current * budget / maximum
	}
	if overall > jobMaximum {
		overall = jobMaximum
	}
	return overall
}

func createDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
