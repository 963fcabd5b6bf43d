package repositories

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrLessonNotFound = errors.New("lesson not found")
	ErrOrderNotFound  = errors.New("no completed order")
)
