package http

import (
	"net/http"

	"github.com/custodia-labs/docprocess-core/internal/core/ports/driving"
)

// Organization endpoints

// handleCreateOrganization godoc
// @Summary      Create organization
// @Description  The caller becomes its first admin
// @Tags         Organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.CreateOrganizationRequest  true  "Organization"
// @Success      201      {object}  driving.OrganizationDetail
// @Failure      400      {object}  ErrorResponse
// @Router       /organizations [post]
func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req driving.CreateOrganizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := s.organizationService.Create(r.Context(), GetAuthContext(r.Context()), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to create organization")
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// handleGetOrganization godoc
// @Summary      Get organization
// @Tags         Organizations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Organization ID"
// @Success      200  {object}  driving.OrganizationDetail
// @Failure      404  {object}  ErrorResponse
// @Router       /organizations/{id} [get]
func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.organizationService.Get(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get organization")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// handleRenameOrganization godoc
// @Summary      Rename organization
// @Tags         Organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                             true  "Organization ID"
// @Param        request  body      driving.RenameOrganizationRequest  true  "New name"
// @Success      200      {object}  driving.OrganizationDetail
// @Failure      403      {object}  ErrorResponse  "Admins only"
// @Router       /organizations/{id} [put]
func (s *Server) handleRenameOrganization(w http.ResponseWriter, r *http.Request) {
	var req driving.RenameOrganizationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	org, err := s.organizationService.Rename(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to rename organization")
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// handleListMembers godoc
// @Summary      List members
// @Tags         Organizations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Organization ID"
// @Success      200  {array}   domain.Member
// @Router       /organizations/{id}/members [get]
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.organizationService.ListMembers(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list members")
		return
	}
	writeJSON(w, http.StatusOK, members)
}

// handleUpdateMemberRole godoc
// @Summary      Change member role
// @Tags         Organizations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "Organization ID"
// @Param        userId   path      string                           true  "User ID"
// @Param        request  body      driving.UpdateMemberRoleRequest  true  "Role"
// @Success      200      {object}  domain.Member
// @Failure      409      {object}  ErrorResponse  "Last admin"
// @Router       /organizations/{id}/members/{userId} [put]
func (s *Server) handleUpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req driving.UpdateMemberRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := s.organizationService.UpdateMemberRole(r.Context(), GetAuthContext(r.Context()),
		r.PathValue("id"), r.PathValue("userId"), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to update member")
		return
	}
	writeJSON(w, http.StatusOK, member)
}

// handleRemoveMember godoc
// @Summary      Remove member
// @Tags         Organizations
// @Security     BearerAuth
// @Param        id      path  string  true  "Organization ID"
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      409  {object}  ErrorResponse  "Last admin"
// @Router       /organizations/{id}/members/{userId} [delete]
func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	err := s.organizationService.RemoveMember(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"), r.PathValue("userId"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to remove member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Invitation endpoints

// handleInvite godoc
// @Summary      Invite by email
// @Tags         Invitations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "Organization ID"
// @Param        request  body      driving.InviteRequest  true  "Invitee"
// @Success      201      {object}  domain.Invitation
// @Failure      403      {object}  ErrorResponse  "Admins only"
// @Router       /organizations/{id}/invitations [post]
func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req driving.InviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, err := s.invitationService.Invite(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to invite")
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// handleListInvitations godoc
// @Summary      List invitations
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Organization ID"
// @Success      200  {array}   domain.Invitation
// @Router       /organizations/{id}/invitations [get]
func (s *Server) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := s.invitationService.List(r.Context(), GetAuthContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list invitations")
		return
	}
	writeJSON(w, http.StatusOK, invitations)
}

// handleViewInvitation godoc
// @Summary      View invitation
// @Description  Public details shown before the invitee signs in
// @Tags         Invitations
// @Produce      json
// @Param        token  path      string  true  "Invitation token"
// @Success      200    {object}  domain.InvitationView
// @Failure      404    {object}  ErrorResponse
// @Failure      409    {object}  ErrorResponse  "No longer open"
// @Router       /invitations/{token} [get]
func (s *Server) handleViewInvitation(w http.ResponseWriter, r *http.Request) {
	view, err := s.invitationService.View(r.Context(), r.PathValue("token"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to get invitation")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleAcceptInvitation godoc
// @Summary      Accept invitation
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Param        token  path      string  true  "Invitation token"
// @Success      200    {object}  domain.Membership
// @Failure      403    {object}  ErrorResponse  "Invitation is for another email"
// @Router       /invitations/{token}/accept [post]
func (s *Server) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	membership, err := s.invitationService.Accept(r.Context(), GetAuthContext(r.Context()), r.PathValue("token"))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to accept invitation")
		return
	}
	writeJSON(w, http.StatusOK, membership)
}

// handleDeclineInvitation godoc
// @Summary      Decline invitation
// @Tags         Invitations
// @Produce      json
// @Security     BearerAuth
// @Param        token  path      string  true  "Invitation token"
// @Success      200    {object}  StatusResponse
// @Router       /invitations/{token}/decline [post]
func (s *Server) handleDeclineInvitation(w http.ResponseWriter, r *http.Request) {
	if err := s.invitationService.Decline(r.Context(), GetAuthContext(r.Context()), r.PathValue("token")); err != nil {
		s.writeServiceError(w, r, err, "failed to decline invitation")
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "declined"})
}

// Helper endpoints

// handleListHelpers godoc
// @Summary      List helper grants
// @Tags         Helpers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  driving.HelperGrants
// @Router       /helpers [get]
func (s *Server) handleListHelpers(w http.ResponseWriter, r *http.Request) {
	grants, err := s.helperService.List(r.Context(), GetAuthContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err, "failed to list helpers")
		return
	}
	writeJSON(w, http.StatusOK, grants)
}

// handleGrantHelper godoc
// @Summary      Grant helper access
// @Tags         Helpers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      driving.GrantHelperRequest  true  "Helper email"
// @Success      201      {object}  domain.HelperGrant
// @Failure      404      {object}  ErrorResponse  "No user with that email"
// @Failure      409      {object}  ErrorResponse  "Already a helper"
// @Router       /helpers [post]
func (s *Server) handleGrantHelper(w http.ResponseWriter, r *http.Request) {
	var req driving.GrantHelperRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	grant, err := s.helperService.Grant(r.Context(), GetAuthContext(r.Context()), req)
	if err != nil {
		s.writeServiceError(w, r, err, "failed to grant helper access")
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

// handleRevokeHelper godoc
// @Summary      Revoke helper access
// @Tags         Helpers
// @Security     BearerAuth
// @Param        id   path  string  true  "Grant ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /helpers/{id} [delete]
func (s *Server) handleRevokeHelper(w http.ResponseWriter, r *http.Request) {
	if err := s.helperService.Revoke(r.Context(), GetAuthContext(r.Context()), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, err, "failed to revoke helper access")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
