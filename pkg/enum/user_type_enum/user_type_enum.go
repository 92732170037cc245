package user_type_enum

const (
	MENTOR  = "MENTOR"
	LEARNER = "LEARNER"
)
