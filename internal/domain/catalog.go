package domain

// GameMode is one entry of the game-mode catalog.
type GameMode struct {
	ID            string
	Name          string
	NameInChinese string
	Description   string
	IsUnlocked    bool
	RequiredGems  int
	OrderIndex    int
	IconName      string
}

// Storybook is a short illustrated story tied to a unit. It owns its pages.
type Storybook struct {
	ID             string
	Title          string
	TitleInChinese string
	UnitID         string
	IsUnlocked     bool
	IsDefault      bool
	RequiredGems   int
	OrderIndex     int
	CoverImageName *string
	Pages          []StoryPage
}

// StoryPage is a single page of a Storybook.
type StoryPage struct {
	PageNumber     int
	ContentFrench  string
	ContentChinese string
	ImageName      *string
	AudioFileName  *string
}
