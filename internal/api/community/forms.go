package community

import (
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"yatube/internal/service"
	"yatube/internal/web"

	"github.com/gin-gonic/gin"
)

// postForm 新建和编辑帖子共用的表单
type postForm struct {
	Text  string `form:"text" binding:"required"`
	Group string `form:"group" binding:"omitempty,numeric"`
}

type commentForm struct {
	Text string `form:"text" binding:"required"`
}

func (f postForm) input() service.PostInput {
	in := service.PostInput{Text: f.Text}
	if id, err := strconv.Atoi(strings.TrimSpace(f.Group)); err == nil {
		in.GroupID = &id
	}
	return in
}

var errNotImage = stderrors.New("not an image")

// imageFromForm 读取可选的图片字段，非图片文件返回 errNotImage
func imageFromForm(c *gin.Context) (*multipart.FileHeader, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	if fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !stderrors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	if !strings.HasPrefix(http.DetectContentType(head[:n]), "image/") {
		return nil, errNotImage
	}
	return fh, nil
}

func imageError(errs web.FormErrors) {
	errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
}
