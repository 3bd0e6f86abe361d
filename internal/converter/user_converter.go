package converter

import (
	"medray-api/internal/delivery/dto"
	"medray-api/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	return &dto.UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Age:              user.Age,
		Gender:           user.Gender,
		PhoneNumber:      user.PhoneNumber,
		MedicalCondition: user.MedicalCondition,
		Role:             string(user.Role),
		Specialty:        user.Specialty,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}

func DoctorToResponse(user *entity.User) *dto.DoctorResponse {
	if user == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:        user.ID,
		Name:      user.Name,
		Specialty: user.Specialty,
	}
}

func DoctorsToResponse(users []entity.User) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *DoctorToResponse(&users[i]))
	}
	return responses
}
