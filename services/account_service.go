package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anjiri1684/freelance_music/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AccountService struct {
	db         *gorm.DB
	bcryptCost int
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{db: db, bcryptCost: bcrypt.DefaultCost}
}

type RegisterUserInput struct {
	Name     string  `validate:"required,min=2"`
	Email    string  `validate:"required,email"`
	Password string  `validate:"required,min=8"`
	Phone    *string `validate:"omitempty,min=7"`
	Location *string
}

type RegisterTeacherInput struct {
	RegisterUserInput
	Bio               *string
	Instruments       []string `validate:"required,min=1,dive,required"`
	HourlyRate        float64  `validate:"required,gt=0"`
	VirtualAvailable  bool
	InPersonAvailable bool
}

type RegisterStudentInput struct {
	RegisterUserInput
	PrimaryInstrument string `validate:"required"`
	SkillLevel        string `validate:"required,oneof=beginner intermediate advanced"`
	LearningGoals     *string
	ReferralSource    string
}

func (s *AccountService) RegisterTeacher(ctx context.Context, in RegisterTeacherInput) (*models.Teacher, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if !in.VirtualAvailable && !in.InPersonAvailable {
		return nil, validationMessage("teacher must offer virtual or in-person lessons")
	}

	var teacher models.Teacher
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.createUser(tx, in.RegisterUserInput, models.RoleTeacher)
		if err != nil {
			return err
		}
		teacher = models.Teacher{
			UserID:            user.ID,
			Bio:               in.Bio,
			Instruments:       datatypes.JSONSlice[string](normalizeInstruments(in.Instruments)),
			HourlyRate:        in.HourlyRate,
			VirtualAvailable:  in.VirtualAvailable,
			InPersonAvailable: in.InPersonAvailable,
			User:              *user,
		}
		return tx.Omit("User").Create(&teacher).Error
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

func (s *AccountService) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*models.Student, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var student models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.createUser(tx, in.RegisterUserInput, models.RoleStudent)
		if err != nil {
			return err
		}
		student = models.Student{
			UserID:            user.ID,
			PrimaryInstrument: in.PrimaryInstrument,
			SkillLevel:        in.SkillLevel,
			LearningGoals:     in.LearningGoals,
			ReferralSource:    strings.TrimSpace(in.ReferralSource),
			User:              *user,
		}
		return tx.Omit("User").Create(&student).Error
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *AccountService) createUser(tx *gorm.DB, in RegisterUserInput, role string) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: string(hashed),
		Phone:    in.Phone,
		Location: in.Location,
		Role:     role,
	}
	if err := tx.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a password against the stored bcrypt hash. Unknown
// emails and wrong passwords fail the same way.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AccountService) GetTeacherByUserID(ctx context.Context, userID uuid.UUID) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := s.db.WithContext(ctx).Preload("User").First(&teacher, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, ErrTeacherNotFound)
	}
	return &teacher, nil
}

func (s *AccountService) GetStudentByUserID(ctx context.Context, userID uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).Preload("User").First(&student, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	return &student, nil
}

func (s *AccountService) GetStudentProfile(ctx context.Context, studentID uuid.UUID) (*models.Student, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).Preload("User").First(&student, "id = ?", studentID).Error; err != nil {
		return nil, notFound(err, ErrStudentNotFound)
	}
	return &student, nil
}

type UpdateTeacherInput struct {
	Bio               *string
	Instruments       []string `validate:"omitempty,min=1,dive,required"`
	HourlyRate        *float64 `validate:"omitempty,gt=0"`
	VirtualAvailable  *bool
	InPersonAvailable *bool
}

func (s *AccountService) UpdateTeacherProfile(ctx context.Context, teacherID uuid.UUID, in UpdateTeacherInput) (*models.Teacher, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var teacher models.Teacher
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&teacher, "id = ?", teacherID).Error; err != nil {
			return notFound(err, ErrTeacherNotFound)
		}
		if in.Bio != nil {
			teacher.Bio = in.Bio
		}
		if in.Instruments != nil {
			teacher.Instruments = datatypes.JSONSlice[string](normalizeInstruments(in.Instruments))
		}
		if in.HourlyRate != nil {
			teacher.HourlyRate = *in.HourlyRate
		}
		if in.VirtualAvailable != nil {
			teacher.VirtualAvailable = *in.VirtualAvailable
		}
		if in.InPersonAvailable != nil {
			teacher.InPersonAvailable = *in.InPersonAvailable
		}
		if !teacher.VirtualAvailable && !teacher.InPersonAvailable {
			return validationMessage("teacher must offer virtual or in-person lessons")
		}
		return tx.Omit("User").Save(&teacher).Error
	})
	if err != nil {
		return nil, err
	}
	return &teacher, nil
}

type UpdateStudentInput struct {
	Name              *string `validate:"omitempty,min=2"`
	Phone             *string `validate:"omitempty,min=7"`
	Location          *string
	PrimaryInstrument *string `validate:"omitempty,min=1"`
	SkillLevel        *string `validate:"omitempty,oneof=beginner intermediate advanced"`
	LearningGoals     *string
}

// UpdateStudentProfile updates the student row and the owning user row
// together.
func (s *AccountService) UpdateStudentProfile(ctx context.Context, studentID uuid.UUID, in UpdateStudentInput) (*models.Student, error) {
	if err := validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	var student models.Student
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&student, "id = ?", studentID).Error; err != nil {
			return notFound(err, ErrStudentNotFound)
		}

		userUpdates := map[string]interface{}{}
		if in.Name != nil {
			userUpdates["name"] = strings.TrimSpace(*in.Name)
		}
		if in.Phone != nil {
			userUpdates["phone"] = *in.Phone
		}
		if in.Location != nil {
			userUpdates["location"] = *in.Location
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&student.User).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		if in.PrimaryInstrument != nil {
			student.PrimaryInstrument = *in.PrimaryInstrument
		}
		if in.SkillLevel != nil {
			student.SkillLevel = *in.SkillLevel
		}
		if in.LearningGoals != nil {
			student.LearningGoals = in.LearningGoals
		}
		if err := tx.Omit("User").Save(&student).Error; err != nil {
			return err
		}
		return tx.Preload("User").First(&student, "id = ?", studentID).Error
	})
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func normalizeInstruments(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, name := range in {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
