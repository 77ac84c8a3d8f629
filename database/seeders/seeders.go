package seeders

import (
	"time"

	"oquvmarkaz_go/database"
	"oquvmarkaz_go/models"
	"oquvmarkaz_go/services"
	"oquvmarkaz_go/utils"

	"github.com/sirupsen/logrus"
)

// SeedDefaultOwner ensures one owner account exists so a fresh install is
// reachable. Idempotent: does nothing when any owner is present.
func SeedDefaultOwner() error {
	var count int64
	if err := database.DB.Model(&models.User{}).Where("role = ?", "owner").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := utils.HashPassword("changeme123")
	if err != nil {
		return err
	}

	owner := models.User{
		Username: "owner",
		Password: hashed,
		Role:     "owner",
		Status:   "active",
	}
	if err := database.DB.Create(&owner).Error; err != nil {
		return err
	}

	logrus.Warn("Seeded default owner account; change the password immediately")
	return nil
}

// SeedDemoData populates sample teachers, courses, groups and students for
// local development. Guarded by a count check so it never duplicates.
func SeedDemoData() error {
	var count int64
	if err := database.DB.Model(&models.Teacher{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	teachers := []models.Teacher{
		{FirstName: "Dilnoza", LastName: "Karimova", Subject: "English", Status: "active"},
		{FirstName: "Botir", LastName: "Rahimov", Subject: "Mathematics", Status: "active"},
	}
	if err := database.DB.Create(&teachers).Error; err != nil {
		return err
	}

	courses := []models.Course{
		{Title: "General English", TitleUz: "Umumiy ingliz tili", Price: "500 000 so'm", DurationMonths: 6, TeacherID: &teachers[0].ID, Active: true},
		{Title: "IELTS Preparation", TitleUz: "IELTS tayyorlov", Price: "800 000 so'm", DurationMonths: 4, TeacherID: &teachers[0].ID, Active: true},
		{Title: "Mathematics", TitleUz: "Matematika", Price: "450 000 so'm", DurationMonths: 9, TeacherID: &teachers[1].ID, Active: true},
	}
	if err := database.DB.Create(&courses).Error; err != nil {
		return err
	}

	groups := []models.Group{
		{Name: "ENG-A1", TeacherID: &teachers[0].ID, CourseID: &courses[0].ID, Schedule: "Mon/Wed/Fri 10:00", MaxStudents: 12, Status: "active"},
		{Name: "IELTS-1", TeacherID: &teachers[0].ID, CourseID: &courses[1].ID, Schedule: "Tue/Thu 14:00", MaxStudents: 10, Status: "active"},
		{Name: "MATH-1", TeacherID: &teachers[1].ID, CourseID: &courses[2].ID, Schedule: "Mon/Wed 16:00", MaxStudents: 14, Status: "active"},
	}
	if err := database.DB.Create(&groups).Error; err != nil {
		return err
	}

	students := []models.Student{
		{FirstName: "Aziz", LastName: "Toirov", Phone: "+998901234567", GroupID: &groups[0].ID, MonthlyPayment: 500000, PaymentStatus: "unpaid"},
		{FirstName: "Malika", LastName: "Yusupova", Phone: "+998907654321", GroupID: &groups[0].ID, MonthlyPayment: 500000, PaymentStatus: "unpaid"},
		{FirstName: "Jasur", LastName: "Nazarov", Phone: "+998933332211", GroupID: &groups[1].ID, MonthlyPayment: 800000, PaymentStatus: "unpaid"},
		{FirstName: "Nilufar", LastName: "Saidova", Phone: "+998935556677", GroupID: &groups[2].ID, MonthlyPayment: 450000, PaymentStatus: "unpaid"},
	}
	if err := database.DB.Create(&students).Error; err != nil {
		return err
	}

	// Record the current month for the first two students so the dashboard has
	// revenue to show out of the box.
	ledger := services.NewLedgerService()
	month := services.MonthKey(time.Now())
	for _, st := range students[:2] {
		if _, err := ledger.RecordPayment(services.RecordPaymentInput{
			StudentID: st.ID,
			Month:     month,
			Amount:    st.MonthlyPayment,
			Method:    "cash",
			Note:      "demo seed",
		}); err != nil {
			logrus.WithError(err).Warn("demo payment seed failed")
		}
	}

	if err := services.NewGroupMetricsService().Sync(nil); err != nil {
		logrus.WithError(err).Warn("demo seed metrics sync failed")
	}

	logrus.Info("Demo data seeded")
	return nil
}
