package model_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/model"
)

var _ = Describe("Defaults", func() {
	var namespaceDef *apischema.KindDefinition

	BeforeEach(func() {
		var err error
		namespaceDef, err = apischema.Default().Lookup("v1", "Namespace")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("FillNamespaceDefaults", func() {
		It("should assign a uid and an Active status", func() {
			filled := model.Named(namespaceDef, "", "prod").FillDefaults()

			Expect(filled.UID()).NotTo(BeEmpty())
			status, ok := filled.Get("status")
			Expect(ok).To(BeTrue())
			Expect(status).To(Equal(map[string]interface{}{"phase": "Active"}))
		})

		It("should assign a distinct uid to each object", func() {
			a := model.Named(namespaceDef, "", "a").FillDefaults()
			b := model.Named(namespaceDef, "", "b").FillDefaults()
			Expect(a.UID()).NotTo(Equal(b.UID()))
		})

		It("should leave existing values alone", func() {
			obj, err := model.New(namespaceDef, map[string]interface{}{
				"metadata": map[string]interface{}{"name": "prod", "uid": "keep-me"},
				"status":   model.TerminatingNamespaceStatus(),
			})
			Expect(err).NotTo(HaveOccurred())

			filled := obj.FillDefaults()
			Expect(filled.UID()).To(Equal("keep-me"))
			status, _ := filled.Get("status")
			Expect(status).To(Equal(map[string]interface{}{"phase": "Terminating"}))
		})

		It("should not modify the input object", func() {
			obj := model.Named(namespaceDef, "", "prod")
			_ = obj.FillDefaults()
			Expect(obj.UID()).To(BeEmpty())
		})
	})

	Describe("FillDefaults", func() {
		It("should pass kinds without a policy through unchanged", func() {
			configMapDef, err := apischema.Default().Lookup("v1", "ConfigMap")
			Expect(err).NotTo(HaveOccurred())

			obj := model.Named(configMapDef, "prod", "settings")
			Expect(obj.FillDefaults()).To(Equal(obj))
		})

		It("should resolve generateName into a prefixed name", func() {
			obj, err := model.New(namespaceDef, map[string]interface{}{
				"metadata": map[string]interface{}{"generateName": "test-"},
			})
			Expect(err).NotTo(HaveOccurred())

			filled := obj.FillDefaults()
			Expect(filled.Name()).To(HavePrefix("test-"))
			Expect(len(filled.Name())).To(BeNumerically(">", len("test-")))
		})

		It("should not override an explicit name with a generated one", func() {
			obj, err := model.New(namespaceDef, map[string]interface{}{
				"metadata": map[string]interface{}{"name": "prod", "generateName": "test-"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(obj.FillDefaults().Name()).To(Equal("prod"))
		})
	})

	Describe("Defaulter", func() {
		It("should dispatch registered fillers by kind", func() {
			defaulter := model.NewDefaulter()
			defaulter.Register(
				schema.GroupVersionKind{Version: "v1", Kind: "Namespace"},
				func(obj model.Object) model.Object {
					out, err := obj.Transform([]string{"metadata", "labels"}, map[string]interface{}{"filled": "yes"})
					Expect(err).NotTo(HaveOccurred())
					return out
				},
			)

			filled := defaulter.Fill(model.Named(namespaceDef, "", "prod"))
			labels, ok := filled.Get("metadata", "labels")
			Expect(ok).To(BeTrue())
			Expect(labels).To(HaveKeyWithValue("filled", "yes"))
		})
	})

	Describe("Namespace status values", func() {
		It("should use the server's phase constants", func() {
			Expect(model.ActiveNamespaceStatus()).To(Equal(map[string]interface{}{"phase": "Active"}))
			Expect(model.TerminatingNamespaceStatus()).To(Equal(map[string]interface{}{"phase": "Terminating"}))
		})
	})
})
