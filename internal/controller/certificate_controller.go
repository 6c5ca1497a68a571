package controller

import (
	"errors"

	"eduai_backend/internal/service"
	"eduai_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CertificateController 处理结业证书查询与公开验证
type CertificateController struct {
	CertificateService *service.CertificateService
}

func NewCertificateController(certificateService *service.CertificateService) *CertificateController {
	return &CertificateController{CertificateService: certificateService}
}

// @Summary 获取我的证书列表
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Certificate}
// @Router /api/certificates [get]
func (c *CertificateController) ListCertificates(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	certificates, err := c.CertificateService.ListMine(user.UserID)
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, certificates)
}

// @Summary 获取证书详情
// @Tags 证书
// @Produce json
// @Security BearerAuth
// @Param id path string true "证书ID"
// @Success 200 {object} util.Response{data=model.Certificate}
// @Failure 404 {object} util.Response "证书不存在"
// @Router /api/certificates/{id} [get]
func (c *CertificateController) GetCertificate(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	certificate, err := c.CertificateService.Get(user.UserID, ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrPermissionDenied) {
			util.Forbidden(ctx)
		} else {
			util.NotFound(ctx)
		}
		return
	}

	util.Success(ctx, certificate)
}

// @Summary 验证证书
// @Description 公开接口，凭证书编号验证真伪
// @Tags 证书
// @Produce json
// @Param serial path string true "证书编号"
// @Success 200 {object} util.Response{data=service.CertificateVerification}
// @Router /api/certificates/verify/{serial} [get]
func (c *CertificateController) VerifyCertificate(ctx *gin.Context) {
	verification, err := c.CertificateService.Verify(ctx.Param("serial"))
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	util.Success(ctx, verification)
}
