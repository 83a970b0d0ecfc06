package joblogs

type ListJobLogsQuery struct {
	Limit  int      `query:"limit" json:"limit,omitempty" default:"100" validate:"min=1,max=1000"`
	Offset int      `query:"offset" json:"offset,omitempty" validate:"min=0"`
	Level  []string `query:"level" json:"level,omitempty" validate:"dive,oneof=info warning error success progress"`
}
