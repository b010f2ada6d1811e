package app

import (
	"time"

	"tailless/api/internal/store"
)

func sessionPayload(session Session) map[string]any {
	return map[string]any{
		"token":        session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.UserID,
		"userName":     session.UserName,
		"userEmail":    session.UserEmail,
		"userImage":    session.UserImage,
		"expiresAt":    session.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func userPayload(user store.User) map[string]any {
	return map[string]any{
		"id":        user.ID,
		"name":      user.Name,
		"email":     user.Email,
		"image":     user.Image,
		"createdAt": user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func spacePayload(space store.Space) map[string]any {
	return map[string]any{
		"id":           space.ID,
		"title":        space.Title,
		"image":        space.Image,
		"description":  space.Description,
		"contributors": space.Contributors,
		"tags":         space.Tags,
		"moments":      space.Moments,
		"layout":       space.Layout,
		"createdAt":    space.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func momentPayload(moment store.Moment) map[string]any {
	return map[string]any{
		"id":         moment.ID,
		"title":      moment.Title,
		"author":     moment.Author,
		"content":    moment.Content,
		"createdAt":  moment.CreatedAt.UTC().Format(time.RFC3339),
		"modifiedAt": moment.ModifiedAt.UTC().Format(time.RFC3339),
	}
}
