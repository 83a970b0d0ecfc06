package jobs

// CreateJobPayload enqueues an ingest job for a batch of source files.
type CreateJobPayload struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required,sourcepath"`
}

type ListJobsQuery struct {
	Limit  int      `query:"limit" json:"limit,omitempty" default:"10" validate:"min=1,max=100"`
	Offset int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Status []string `query:"status" json:"status,omitempty" validate:"dive,oneof=pending in_progress completed failed"`
}
