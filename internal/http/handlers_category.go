package http

import (
	"net/http"
	"net/url"

	"finweb/internal/amqp"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/session"
)

const (
	resourceCategory = "category"

	categoryInUseMessage = "Cannot delete the category. Make sure it is not assigned to any transaction."
)

type categoryListView struct {
	Categories []core.Category
}

type categoryFormView struct {
	Form         CategoryForm
	Editing      bool
	DefaultColor string
}

func newCategoryFormView(f CategoryForm, editing bool) categoryFormView {
	return categoryFormView{Form: f, Editing: editing, DefaultColor: core.DefaultCategoryColor}
}

func (s *Server) handleCategoryList(r *http.Request, sess *session.Session) *Response {
	categories, err := s.finance.ListCategories(r.Context(), sess.Token)
	if err != nil {
		return s.remoteFailure(sess, err, "/", "Failed to load categories.")
	}
	return Render("categories_index", categoryListView{Categories: categories})
}

func (s *Server) handleCategoryAddForm(r *http.Request, sess *session.Session) *Response {
	return Render("categories_form", newCategoryFormView(CategoryForm{Color: core.DefaultCategoryColor}, false))
}

func (s *Server) handleCategoryAdd(r *http.Request, sess *session.Session) *Response {
	form, err := parseForm(r)
	if err != nil {
		return Redirect("/categories/add").Error(invalidFormMessage)
	}
	f := parseCategoryForm(form)
	view := newCategoryFormView(f, false)

	in, msg := f.Input()
	if msg != "" {
		return Render("categories_form", view).Status(http.StatusUnprocessableEntity).Error(msg)
	}

	category, err := s.finance.CreateCategory(r.Context(), sess.Token, in)
	if err != nil {
		return s.formFailure(sess, err, "categories_form", view, "Failed to create category.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Category created",
		log.FieldCategoryID, category.ID,
		log.FieldOperation, log.OpCreate)
	s.publish(r, sess, activity(resourceCategory, amqp.ActionCreated, category.ID, ""))
	return Redirect("/categories").Success("Category created successfully.")
}

func (s *Server) handleCategoryEditForm(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	category, err := s.finance.GetCategory(r.Context(), sess.Token, id)
	if err != nil {
		return s.remoteFailure(sess, err, "/categories", "Failed to load category.")
	}
	return Render("categories_form", newCategoryFormView(categoryFormFrom(category), true))
}

func (s *Server) handleCategoryEdit(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	form, err := parseForm(r)
	if err != nil {
		return Redirect("/categories/edit/" + url.PathEscape(id)).Error(invalidFormMessage)
	}
	f := parseCategoryForm(form)
	f.ID = id
	view := newCategoryFormView(f, true)

	in, msg := f.Input()
	if msg != "" {
		return Render("categories_form", view).Status(http.StatusUnprocessableEntity).Error(msg)
	}

	if err := s.finance.UpdateCategory(r.Context(), sess.Token, id, in); err != nil {
		return s.formFailure(sess, err, "categories_form", view, "Failed to update category.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Category updated",
		log.FieldCategoryID, id,
		log.FieldOperation, log.OpUpdate)
	s.publish(r, sess, activity(resourceCategory, amqp.ActionUpdated, id, ""))
	return Redirect("/categories").Success("Category updated successfully.")
}

// handleCategoryDelete surfaces every remote failure with the same notice: the
// finance API refuses to delete categories still referenced by transactions.
func (s *Server) handleCategoryDelete(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	if err := s.finance.DeleteCategory(r.Context(), sess.Token, id); err != nil {
		resp := s.remoteFailure(sess, err, "/categories", categoryInUseMessage)
		if resp.Location() == "/categories" {
			resp.Error(categoryInUseMessage)
		}
		return resp
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Category deleted",
		log.FieldCategoryID, id,
		log.FieldOperation, log.OpDelete)
	s.publish(r, sess, activity(resourceCategory, amqp.ActionDeleted, id, ""))
	return Redirect("/categories").Success("Category deleted successfully.")
}
