package model

type CourseDifficulty string

const (
	DifficultyBeginner     CourseDifficulty = "beginner"
	DifficultyIntermediate CourseDifficulty = "intermediate"
	DifficultyAdvanced     CourseDifficulty = "advanced"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

// swagger:model Course
type Course struct {
	BaseModel
	Title         string           `gorm:"size:255;not null" json:"title"`
	Slug          string           `gorm:"size:300;unique;not null" json:"slug"`
	Description   string           `gorm:"type:text" json:"description"`
	CategoryID    uint             `gorm:"index;type:bigint unsigned" json:"categoryId"`
	Category      *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	InstructorID  uint             `gorm:"index;type:bigint unsigned" json:"instructorId"`
	Instructor    *User            `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Difficulty    CourseDifficulty `gorm:"type:varchar(20);default:'beginner'" json:"difficulty"`
	DurationHours int              `gorm:"default:0" json:"durationHours"`
	Thumbnail     string           `gorm:"size:255" json:"thumbnail"`
	Status        CourseStatus     `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	EnrolledCount int              `gorm:"default:0" json:"enrolledCount"`
	AverageRating float64          `gorm:"default:0" json:"averageRating"`
	TotalRatings  int              `gorm:"default:0" json:"totalRatings"`
	Modules       []CourseModule   `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

type ModuleContentType string

const (
	ModuleVideo   ModuleContentType = "video"
	ModuleArticle ModuleContentType = "article"
	ModuleQuiz    ModuleContentType = "quiz"
)

// swagger:model CourseModule
type CourseModule struct {
	BaseModel
	CourseID        uint              `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Title           string            `gorm:"size:255;not null" json:"title"`
	Description     string            `gorm:"type:text" json:"description"`
	Order           int               `gorm:"default:0" json:"order"`
	ContentType     ModuleContentType `gorm:"type:varchar(20);default:'article'" json:"contentType"`
	ContentURL      string            `gorm:"size:500" json:"contentUrl"`
	DurationMinutes int               `gorm:"default:0" json:"durationMinutes"`
	IsFreePreview   bool              `gorm:"default:false" json:"isFreePreview"`
}

func (CourseModule) TableName() string {
	return "course_modules"
}
