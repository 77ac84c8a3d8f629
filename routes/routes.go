package routes

import (
	"oquvmarkaz_go/controllers"
	"oquvmarkaz_go/middleware"
	ws "oquvmarkaz_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, hub *ws.Hub) {
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	teacherController := &controllers.TeacherController{}
	courseController := &controllers.CourseController{}
	dashboardController := &controllers.DashboardController{}
	notificationController := &controllers.NotificationController{}
	logController := &controllers.LogController{}
	healthController := &controllers.HealthController{}
	studentController := controllers.NewStudentController()
	groupController := controllers.NewGroupController()
	paymentController := controllers.NewPaymentController(hub)
	applicationController := controllers.NewApplicationController()
	ledgerImportController := controllers.NewLedgerImportController()
	wsController := controllers.NewWebSocketController(hub)

	app.Get("/health", healthController.HealthCheck)

	// Public marketing-site endpoints
	public := app.Group("/public")
	public.Get("/courses", courseController.GetPublicCourses)
	public.Post("/applications", applicationController.SubmitApplication)

	// Authentication
	auth := app.Group("/api/auth")
	auth.Post("/login", authController.Login)

	api := app.Group("/api", middleware.JWTMiddleware())
	api.Use(middleware.LogActivityMiddleware())

	api.Post("/auth/logout", authController.Logout)
	api.Get("/auth/profile", authController.GetProfile)
	api.Put("/auth/password", authController.ChangePassword)
	api.Post("/auth/register", middleware.RequireOwnerOrAdmin(), authController.Register)

	// WebSocket for live dashboard updates. Stats first: the upgrade guard
	// would otherwise swallow it with a 426.
	api.Get("/ws/stats", middleware.RequireOwnerOrAdmin(), wsController.Stats)
	api.Use("/ws", wsController.Upgrade)
	api.Get("/ws", wsController.Handler())

	// Users (owner/admin only)
	users := api.Group("/users", middleware.RequireOwnerOrAdmin())
	users.Get("/", userController.GetUsers)
	users.Put("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)
	api.Post("/profile/avatar", userController.UploadAvatar)

	// Students
	students := api.Group("/students", middleware.RequireStaff())
	students.Get("/", studentController.GetStudents)
	students.Get("/:id", studentController.GetStudent)
	students.Post("/", middleware.RequireOwnerOrAdmin(), studentController.CreateStudent)
	students.Put("/:id", middleware.RequireOwnerOrAdmin(), studentController.UpdateStudent)
	students.Delete("/:id", middleware.RequireOwnerOrAdmin(), studentController.DeleteStudent)

	// Payment ledger
	students.Get("/:id/payments", paymentController.GetPayments)
	students.Get("/:id/payments/history", paymentController.GetPaymentHistory)
	students.Get("/:id/payments/outstanding", paymentController.GetOutstandingMonths)
	students.Post("/:id/payments", middleware.RequireOwnerOrAdmin(), paymentController.RecordPayment)
	api.Post("/payments/:paymentId/receipt", middleware.RequireOwnerOrAdmin(), paymentController.UploadReceipt)
	api.Post("/payments/import", middleware.RequireOwnerOrAdmin(), ledgerImportController.ImportPayments)

	// Teachers
	teachers := api.Group("/teachers", middleware.RequireStaff())
	teachers.Get("/", teacherController.GetTeachers)
	teachers.Get("/:id", teacherController.GetTeacher)
	teachers.Post("/", middleware.RequireOwnerOrAdmin(), teacherController.CreateTeacher)
	teachers.Put("/:id", middleware.RequireOwnerOrAdmin(), teacherController.UpdateTeacher)
	teachers.Delete("/:id", middleware.RequireOwnerOrAdmin(), teacherController.DeleteTeacher)

	// Groups
	groups := api.Group("/groups", middleware.RequireStaff())
	groups.Get("/", groupController.GetGroups)
	groups.Get("/:id", groupController.GetGroup)
	groups.Post("/", middleware.RequireOwnerOrAdmin(), groupController.CreateGroup)
	groups.Put("/:id", middleware.RequireOwnerOrAdmin(), groupController.UpdateGroup)
	groups.Delete("/:id", middleware.RequireOwnerOrAdmin(), groupController.DeleteGroup)
	groups.Post("/:id/students", middleware.RequireOwnerOrAdmin(), groupController.AddStudent)
	groups.Delete("/:id/students/:studentId", middleware.RequireOwnerOrAdmin(), groupController.RemoveStudent)

	// Courses
	courses := api.Group("/courses", middleware.RequireStaff())
	courses.Get("/", courseController.GetCourses)
	courses.Get("/:id", courseController.GetCourse)
	courses.Post("/", middleware.RequireOwnerOrAdmin(), courseController.CreateCourse)
	courses.Put("/:id", middleware.RequireOwnerOrAdmin(), courseController.UpdateCourse)
	courses.Delete("/:id", middleware.RequireOwnerOrAdmin(), courseController.DeleteCourse)

	// Applications
	applications := api.Group("/applications", middleware.RequireStaff())
	applications.Get("/", applicationController.GetApplications)
	applications.Put("/:id/status", applicationController.UpdateApplicationStatus)
	applications.Delete("/:id", middleware.RequireOwnerOrAdmin(), applicationController.DeleteApplication)

	// Financial dashboard (owner/admin only)
	dashboard := api.Group("/dashboard", middleware.RequireOwnerOrAdmin())
	dashboard.Get("/overview", dashboardController.GetOverview)
	dashboard.Get("/financial", dashboardController.GetFinancialDashboard)
	dashboard.Get("/financial/export", dashboardController.ExportFinancialReport)
	dashboard.Get("/payout-rate", dashboardController.GetPayoutRate)
	dashboard.Put("/payout-rate", dashboardController.SetPayoutRate)

	// Notifications
	notifs := api.Group("/notifications")
	notifs.Get("/", notificationController.GetNotifications)
	notifs.Get("/unread-count", notificationController.GetUnreadCount)
	notifs.Put("/:id/read", notificationController.MarkAsRead)
	notifs.Put("/read-all", notificationController.MarkAllAsRead)

	// Activity logs (owner/admin only)
	api.Get("/logs", middleware.RequireOwnerOrAdmin(), logController.GetLogs)
}
