package rest

const (
	// api
	RouteApiV1 = "/api/v1"

	// auth
	RouteAuth     = RouteApiV1 + "/auth"
	RouteLogin    = RouteAuth + "/login"
	RouteRegister = RouteAuth + "/register"
	RouteRefresh  = RouteAuth + "/refresh"

	// files
	RouteFiles        = RouteApiV1 + "/files"
	RouteFileUpload   = RouteFiles + "/upload"
	RouteFileDownload = RouteFiles + "/download/:file_id"
	RouteFile         = RouteFiles + "/:file_id"

	// admin
	RouteAdmin      = RouteApiV1 + "/admin"
	RouteAdminFiles = RouteAdmin + "/files"

	RouteUsers    = RouteApiV1 + "/users"
	RouteUser     = RouteUsers + "/:user_id"
	RouteUserRole = RouteUser + "/role"

	// ops
	RouteHealth  = RouteApiV1 + "/healthz"
	RouteMetrics = RouteApiV1 + "/metrics"
)
