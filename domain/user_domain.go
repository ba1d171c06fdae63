package domain

var (
	MessageSuccessGetUser    = "user retrieved successfully"
	MessageSuccessCreateUser = "user created successfully"

	MessageFailedGetUser    = "failed to retrieve user"
	MessageFailedCreateUser = "failed to create user"
)
