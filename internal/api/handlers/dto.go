// dto.go — JSON-представления запросов и ответов API.
package handlers

import (
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/bigkaa/jobly/internal/domain/model"
)

// --- Компании ---

type companyCreateRequest struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

type companyUpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

type companyResponse struct {
	Handle       string  `json:"handle"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	NumEmployees *int    `json:"numEmployees"`
	LogoURL      *string `json:"logoUrl"`
}

// companyDetailResponse — карточка компании вместе с вакансиями.
type companyDetailResponse struct {
	companyResponse
	Jobs []*jobResponse `json:"jobs"`
}

func mapCompany(c *model.Company) *companyResponse {
	return &companyResponse{
		Handle:       c.Handle,
		Name:         c.Name,
		Description:  c.Description,
		NumEmployees: c.NumEmployees,
		LogoURL:      c.LogoURL,
	}
}

func mapCompanyDetail(c *model.Company) *companyDetailResponse {
	return &companyDetailResponse{
		companyResponse: *mapCompany(c),
		Jobs:            mapJobs(c.Jobs),
	}
}

func mapCompanies(cs []*model.Company) []*companyResponse {
	out := make([]*companyResponse, len(cs))
	for i, c := range cs {
		out[i] = mapCompany(c)
	}
	return out
}

// --- Вакансии ---

type jobCreateRequest struct {
	Title         string  `json:"title"`
	Salary        *int    `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
}

// jobUpdateRequest — id и companyHandle не изменяются и отклоняются декодером.
type jobUpdateRequest struct {
	Title  *string `json:"title"`
	Salary *int    `json:"salary"`
	Equity *string `json:"equity"`
}

type jobResponse struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Salary        *int    `json:"salary"`
	Equity        *string `json:"equity"`
	CompanyHandle string  `json:"companyHandle"`
}

func mapJob(j *model.Job) *jobResponse {
	return &jobResponse{
		ID:            j.ID,
		Title:         j.Title,
		Salary:        j.Salary,
		Equity:        j.Equity,
		CompanyHandle: j.CompanyHandle,
	}
}

func mapJobs(js []*model.Job) []*jobResponse {
	out := make([]*jobResponse, len(js))
	for i, j := range js {
		out[i] = mapJob(j)
	}
	return out
}

// --- Пользователи ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// registerRequest — email проверяется при декодировании (openapi_types.Email).
type registerRequest struct {
	Username  string              `json:"username"`
	Password  string              `json:"password"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Email     openapi_types.Email `json:"email"`
}

// userCreateRequest — создание пользователя администратором (может задать isAdmin).
type userCreateRequest struct {
	registerRequest
	IsAdmin bool `json:"isAdmin"`
}

// userUpdateRequest — isAdmin может менять только администратор.
type userUpdateRequest struct {
	Password  *string              `json:"password"`
	FirstName *string              `json:"firstName"`
	LastName  *string              `json:"lastName"`
	Email     *openapi_types.Email `json:"email"`
	IsAdmin   *bool                `json:"isAdmin"`
}

type userResponse struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// userDetailResponse — пользователь с ID вакансий, на которые он откликнулся.
type userDetailResponse struct {
	userResponse
	Jobs []int `json:"jobs"`
}

// emailPtr снимает тип openapi_types.Email с необязательного поля.
func emailPtr(e *openapi_types.Email) *string {
	if e == nil {
		return nil
	}
	s := string(*e)
	return &s
}

func mapUser(u *model.User) *userResponse {
	return &userResponse{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
	}
}

func mapUserDetail(u *model.User) *userDetailResponse {
	jobs := u.Jobs
	if jobs == nil {
		jobs = []int{}
	}
	return &userDetailResponse{
		userResponse: *mapUser(u),
		Jobs:         jobs,
	}
}
