package types

import "github.com/yeisme/filevault/pkg/scheduler"

// JobsResponse 定时任务列表.
type JobsResponse struct {
	Jobs []scheduler.JobInfo `json:"jobs"`
}
