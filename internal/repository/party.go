package repository

import (
	"fmt"

	"github.com/Freeeeeet/coach_booking/internal/model"
)

// partyColumns колонки владельца и флага прочтения для роли
func partyColumns(role model.Role) (idColumn, readColumn string, err error) {
	switch role {
	case model.RoleMember:
		return "member_id", "member_is_read", nil
	case model.RoleCoach:
		return "coach_id", "coach_is_read", nil
	default:
		return "", "", fmt.Errorf("unknown role %q", role)
	}
}

func statusStrings(statuses []model.RequestStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
