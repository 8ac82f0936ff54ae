package httpapi

import (
	"time"

	"study-planner/internal/model"
	"study-planner/internal/service"
)

type createUserRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	TelegramID *int64 `json:"telegramId,omitempty"`
}

func toUser(u *model.User) userResponse {
	return userResponse{ID: u.ID, Name: u.DisplayName(), TelegramID: u.TelegramID}
}

type createPlanRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	IsStudy     bool   `json:"isStudy"`
	UserStudyID *uint  `json:"userStudyId"`
	StudyTime   int64  `json:"studyTime"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type completeRequest struct {
	IsComplete *bool `json:"isComplete"`
}

type visibleRequest struct {
	IsVisible *bool `json:"isVisible"`
}

type studyTimeRequest struct {
	Minutes int64 `json:"minutes"`
}

type planResponse struct {
	ID          uint   `json:"id"`
	PlannerID   uint   `json:"plannerId"`
	UserID      uint   `json:"userId,omitempty"`
	UserStudyID *uint  `json:"userStudyId,omitempty"`
	Name        string `json:"name"`
	Date        string `json:"date,omitempty"`
	IsStudy     bool   `json:"isStudy"`
	IsComplete  bool   `json:"isComplete"`
	IsVisible   bool   `json:"isVisible"`
	StudyTime   int64  `json:"studyTime"`
}

func toPlan(p model.Plan) planResponse {
	return planResponse{
		ID:          p.ID,
		PlannerID:   p.PlannerID,
		UserStudyID: p.UserStudyID,
		Name:        p.Name,
		IsStudy:     p.IsStudy,
		IsComplete:  p.IsComplete,
		IsVisible:   p.IsVisible,
		StudyTime:   p.StudyTime,
	}
}

func toPlanDetail(d *service.PlanDetail) planResponse {
	resp := toPlan(d.Plan)
	resp.UserID = d.UserID
	resp.Date = formatDate(d.Date)
	return resp
}

type memoRequest struct {
	Memo string `json:"memo"`
}

type ddayRequest struct {
	DDay *string `json:"dday"`
}

type plannerResponse struct {
	ID                uint   `json:"id"`
	CalendarID        uint   `json:"calendarId"`
	Date              string `json:"date"`
	Memo              string `json:"memo"`
	DDay              string `json:"dday,omitempty"`
	IsPublic          bool   `json:"isPublic"`
	DailyStudyTime    int64  `json:"dailyStudyTime"`
	DailyCompletedNum int64  `json:"dailyCompletedNum"`
}

func toPlanner(p *model.Planner) plannerResponse {
	resp := plannerResponse{
		ID:                p.ID,
		CalendarID:        p.CalendarID,
		Date:              formatDate(p.Date),
		Memo:              p.Memo,
		IsPublic:          p.IsPublic,
		DailyStudyTime:    p.DailyStudyTime,
		DailyCompletedNum: p.DailyCompletedNum,
	}
	if p.DDay != nil {
		resp.DDay = formatDate(*p.DDay)
	}
	return resp
}

type calendarResponse struct {
	ID                  uint              `json:"id"`
	Year                int               `json:"year"`
	Month               int               `json:"month"`
	MonthlyStudyTime    int64             `json:"monthlyStudyTime"`
	MonthlyCompletedNum int64             `json:"monthlyCompletedNum"`
	Planners            []plannerResponse `json:"planners"`
}

func toCalendar(c *model.Calendar) calendarResponse {
	resp := calendarResponse{
		ID:                  c.ID,
		Year:                c.Year,
		Month:               c.Month,
		MonthlyStudyTime:    c.MonthlyStudyTime,
		MonthlyCompletedNum: c.MonthlyCompletedNum,
		Planners:            make([]plannerResponse, 0, len(c.Planners)),
	}
	for i := range c.Planners {
		resp.Planners = append(resp.Planners, toPlanner(&c.Planners[i]))
	}
	return resp
}

type createProjectRequest struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type spanRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type projectResponse struct {
	ID         uint   `json:"id"`
	UserID     uint   `json:"userId"`
	Name       string `json:"name"`
	Start      string `json:"start"`
	End        string `json:"end"`
	IsComplete bool   `json:"isComplete"`
	IsVisible  bool   `json:"isVisible"`
}

func toProject(p *model.Project) projectResponse {
	return projectResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Name:       p.Name,
		Start:      formatDate(p.StartDate),
		End:        formatDate(p.EndDate),
		IsComplete: p.IsComplete,
		IsVisible:  p.IsVisible,
	}
}

type createStudyRequest struct {
	Name string `json:"name"`
}

type rankRequest struct {
	Rank int `json:"rank"`
}

type memberResponse struct {
	ID           uint `json:"id"`
	UserID       uint `json:"userId"`
	StudyID      uint `json:"studyId"`
	MemberStatus int  `json:"memberStatus"`
}

func toMember(m *model.UserStudy) memberResponse {
	return memberResponse{ID: m.ID, UserID: m.UserID, StudyID: m.StudyID, MemberStatus: m.MemberStatus}
}

type studyResponse struct {
	ID               uint             `json:"id"`
	Name             string           `json:"name"`
	MemberCount      int64            `json:"memberCount"`
	TotalStudyTime   int64            `json:"totalStudyTime"`
	AverageStudyTime int64            `json:"averageStudyTime"`
	Members          []memberResponse `json:"members"`
}

func toStudy(s *service.StudyDetail) studyResponse {
	resp := studyResponse{
		ID:               s.ID,
		Name:             s.Name,
		MemberCount:      s.MemberCount,
		TotalStudyTime:   s.TotalStudyTime,
		AverageStudyTime: s.AverageStudyTime,
		Members:          make([]memberResponse, 0, len(s.Members)),
	}
	for i := range s.Members {
		resp.Members = append(resp.Members, toMember(&s.Members[i]))
	}
	return resp
}

type createPostRequest struct {
	Title    string `json:"title"`
	Contents string `json:"contents"`
	Image    string `json:"image"`
	IsNotice bool   `json:"isNotice"`
}

type updatePostRequest struct {
	Title    *string `json:"title"`
	Contents *string `json:"contents"`
	Image    *string `json:"image"`
}

type postResponse struct {
	ID        uint      `json:"id"`
	StudyID   uint      `json:"studyId"`
	WriterID  uint      `json:"writerId"`
	Title     string    `json:"title"`
	Contents  string    `json:"contents"`
	Image     string    `json:"image,omitempty"`
	IsNotice  bool      `json:"isNotice"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPost(p *model.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		StudyID:   p.StudyID,
		WriterID:  p.WriterID,
		Title:     p.Title,
		Contents:  p.Contents,
		Image:     p.Image,
		IsNotice:  p.IsNotice,
		CreatedAt: p.CreatedAt,
	}
}

func toPosts(posts []model.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, toPost(&posts[i]))
	}
	return out
}

func formatDate(t time.Time) string {
	return t.UTC().Format(model.DateLayout)
}
