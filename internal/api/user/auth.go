package user

import (
	stderrors "errors"
	"net/http"
	"strings"

	"yatube/internal/errors"
	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/internal/service"
	"yatube/internal/util"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler 处理注册、登录、注销和密码重置页面
type AuthHandler struct {
	userService service.UserServiceInterface
}

// NewAuthHandler 创建一个新的 AuthHandler 实例
func NewAuthHandler(userService service.UserServiceInterface) *AuthHandler {
	return &AuthHandler{userService}
}

type signupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150"`
	Email     string `form:"email" binding:"omitempty,email"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required"`
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

type passwordResetForm struct {
	Email string `form:"email" binding:"required,email"`
}

type setPasswordForm struct {
	NewPassword1 string `form:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" binding:"required"`
}

const passwordMismatch = "The two password fields didn't match."

func (h *AuthHandler) SignupForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "users/signup.html", gin.H{
		"title": "Sign up",
		"form":  signupForm{},
	})
}

// Signup 注册成功后跳转首页
func (h *AuthHandler) Signup(c *gin.Context) {
	var form signupForm
	errs := web.FormErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = web.BindErrors(err)
	}
	if form.Password1 != "" && form.Password1 != form.Password2 {
		errs.Add("password2", passwordMismatch)
	}
	if errs.Any() {
		h.renderSignup(c, form, errs)
		return
	}

	user := &model.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: form.Password1,
	}
	if err := h.userService.Register(c.Request.Context(), user); err != nil {
		switch errors.CodeOf(err) {
		case errors.ErrUserExists:
			errs.Add("username", "A user with that username already exists.")
		case errors.ErrWeakPassword:
			errs.Add("password2", messageOf(err))
		case errors.ErrValidation:
			errs.Add("username", messageOf(err))
		default:
			util.Logger.Error("注册失败", zap.Error(err))
			errors.HandleError(c, err)
			return
		}
		h.renderSignup(c, form, errs)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) renderSignup(c *gin.Context, form signupForm, errs web.FormErrors) {
	form.Password1, form.Password2 = "", ""
	web.Render(c, http.StatusOK, "users/signup.html", gin.H{
		"title":  "Sign up",
		"form":   form,
		"errors": errs,
	})
}

func (h *AuthHandler) LoginForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "users/login.html", gin.H{
		"title": "Log in",
		"form":  loginForm{},
		"next":  c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err == nil {
		user, err := h.userService.Login(c.Request.Context(), form.Username, form.Password)
		if err == nil {
			token, err := h.userService.IssueToken(user)
			if err != nil {
				errors.HandleError(c, err)
				return
			}
			middleware.StartSession(c, token)
			c.Redirect(http.StatusFound, safeNext(form.Next))
			return
		}
		if !errors.HasCode(err, errors.ErrInvalidCredentials) {
			errors.HandleError(c, err)
			return
		}
	}

	errs := web.FormErrors{}
	errs.Add(web.NonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
	web.Render(c, http.StatusOK, "users/login.html", gin.H{
		"title":  "Log in",
		"form":   loginForm{Username: form.Username},
		"next":   form.Next,
		"errors": errs,
	})
}

// Logout 令牌加入黑名单并清除 cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	h.userService.Logout(c.GetString(middleware.TokenKey))
	middleware.ClearSession(c)
	c.Set(web.UserKey, nil)
	web.Render(c, http.StatusOK, "users/logged_out.html", gin.H{"title": "Logged out"})
}

func (h *AuthHandler) PasswordResetForm(c *gin.Context) {
	web.Render(c, http.StatusOK, "users/password_reset_form.html", gin.H{
		"title": "Reset password",
		"form":  passwordResetForm{},
	})
}

// PasswordReset 无论邮箱是否存在都跳到提示页
func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var form passwordResetForm
	if err := c.ShouldBind(&form); err != nil {
		web.Render(c, http.StatusOK, "users/password_reset_form.html", gin.H{
			"title":  "Reset password",
			"form":   form,
			"errors": web.BindErrors(err),
		})
		return
	}

	if err := h.userService.RequestPasswordReset(c.Request.Context(), form.Email); err != nil {
		errors.HandleError(c, errors.Wrap(errors.ErrInternal, "请求密码重置失败", err))
		return
	}
	c.Redirect(http.StatusFound, "/auth/password_reset/done/")
}

func (h *AuthHandler) PasswordResetDone(c *gin.Context) {
	web.Render(c, http.StatusOK, "users/password_reset_done.html", gin.H{"title": "Password reset sent"})
}

func (h *AuthHandler) PasswordResetConfirmForm(c *gin.Context) {
	_, err := h.userService.CheckPasswordResetToken(c.Request.Context(), c.Param("token"))
	if err != nil && !errors.HasCode(err, errors.ErrInvalidToken) {
		errors.HandleError(c, err)
		return
	}
	web.Render(c, http.StatusOK, "users/password_reset_confirm.html", gin.H{
		"title":      "Choose a new password",
		"valid_link": err == nil,
	})
}

func (h *AuthHandler) PasswordResetConfirm(c *gin.Context) {
	token := c.Param("token")
	var form setPasswordForm
	errs := web.FormErrors{}
	if err := c.ShouldBind(&form); err != nil {
		errs = web.BindErrors(err)
	}
	if form.NewPassword1 != "" && form.NewPassword1 != form.NewPassword2 {
		errs.Add("new_password2", passwordMismatch)
	}

	if !errs.Any() {
		if err := h.userService.ResetPassword(c.Request.Context(), token, form.NewPassword1); err != nil {
			switch errors.CodeOf(err) {
			case errors.ErrInvalidToken:
				web.Render(c, http.StatusOK, "users/password_reset_confirm.html", gin.H{
					"title":      "Choose a new password",
					"valid_link": false,
				})
				return
			case errors.ErrWeakPassword:
				errs.Add("new_password2", messageOf(err))
			default:
				errors.HandleError(c, err)
				return
			}
		}
	}

	if errs.Any() {
		web.Render(c, http.StatusOK, "users/password_reset_confirm.html", gin.H{
			"title":      "Choose a new password",
			"valid_link": true,
			"errors":     errs,
		})
		return
	}
	web.Render(c, http.StatusOK, "users/password_reset_complete.html", gin.H{"title": "Password changed"})
}

// safeNext 只允许站内路径，防止开放重定向
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") && !strings.HasPrefix(next, "/\\") {
		return next
	}
	return "/"
}

func messageOf(err error) string {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
