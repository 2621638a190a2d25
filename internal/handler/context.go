package handler

type ContextKey string

var (
	RoleCtxKey       ContextKey = "role"
	SubCtxKey        ContextKey = "sub"
	MyInfoCtx        ContextKey = "myInfo"
	UserInfoCtx      ContextKey = "userInfo"
	PatientCtx       ContextKey = "patient"
	TreatmentPlanCtx ContextKey = "treatmentPlan"
)
