package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/auth"
	"github.com/spigell/careerpath/internal/jobs"
	"github.com/spigell/careerpath/internal/predictor"
	"github.com/spigell/careerpath/internal/resume"
)

const (
	welcomeMessage = "Welcome to the Resume Parser API!"
	redirectURL    = "/"
	resumeField    = "resume"
)

type handlers struct {
	deps   Deps
	logger *zap.Logger
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) register(app *fiber.App) {
	app.Get("/", h.index)

	api := app.Group("/api/auth")
	api.Post("/register", h.registerUser)
	api.Post("/login", h.login)
	api.Get("/me", requireBearer(h.deps.Auth), h.me)

	app.Post("/upload", h.upload)
	app.Get("/trending-jobs", h.trendingJobs)
	app.Post("/questionnaire", h.questionnaire)
}

func (h *handlers) index(c *fiber.Ctx) error {
	return c.SendString(welcomeMessage)
}

func (h *handlers) registerUser(c *fiber.Ctx) error {
	var req registerRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to parse request body"})
	}

	err := h.deps.Auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "User already exists!"})
	case errors.Is(err, auth.ErrMissingFields), errors.Is(err, auth.ErrPasswordTooLong):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	case err != nil:
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "User registered successfully!",
		"redirectUrl": redirectURL,
	})
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Failed to parse request body"})
	}

	token, err := h.deps.Auth.Login(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password!"})
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"token": token, "redirectUrl": redirectURL})
}

func (h *handlers) me(c *fiber.Ctx) error {
	identity, ok := c.Locals(localsIdentity).(*auth.Identity)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized or invalid token"})
	}
	return c.JSON(identity)
}

func (h *handlers) upload(c *fiber.Ctx) error {
	header, err := c.FormFile(resumeField)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No resume uploaded"})
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read uploaded file: %w", err)
	}

	result, err := h.deps.Resumes.Parse(c.UserContext(), &resume.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get(fiber.HeaderContentType),
		Data:        data,
	})
	if errors.Is(err, resume.ErrUnsupportedType) || errors.Is(err, resume.ErrUnreadableDocument) ||
		errors.Is(err, resume.ErrEmptyUpload) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return err
	}

	return c.JSON(result)
}

func (h *handlers) trendingJobs(c *fiber.Ctx) error {
	body, err := h.deps.Jobs.Trending(c.UserContext())

	var statusErr *jobs.StatusError
	switch {
	case errors.As(err, &statusErr):
		return c.Status(statusErr.StatusCode).JSON(fiber.Map{"error": "Failed to fetch jobs"})
	case err != nil:
		h.logger.Warn("fetching trending jobs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

func (h *handlers) questionnaire(c *fiber.Ctx) error {
	var raw map[string]any
	if err := json.Unmarshal(c.Body(), &raw); err != nil || raw == nil {
		verr := &predictor.ValidationError{Reason: "request body must be a JSON object"}
		return h.predictionFailed(c, verr)
	}

	label, err := h.deps.Predictor.Predict(raw)
	if err != nil {
		return h.predictionFailed(c, err)
	}

	return c.JSON(fiber.Map{"prediction": label})
}

func (h *handlers) predictionFailed(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error()}

	var kindErr predictor.KindError
	if errors.As(err, &kindErr) {
		body["kind"] = string(kindErr.Kind())
	}

	h.logger.Warn("prediction failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(body)
}
