package client_test

import (
	"context"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/hawkowl/txkube/apierrors"
	"github.com/hawkowl/txkube/apischema"
	"github.com/hawkowl/txkube/client"
	"github.com/hawkowl/txkube/model"
)

var _ = Describe("Network Client", func() {
	var (
		ctx          context.Context
		server       *ghttp.Server
		c            client.Interface
		catalog      *apischema.Catalog
		namespaceDef *apischema.KindDefinition
		podDef       *apischema.KindDefinition
	)

	BeforeEach(func() {
		ctx = context.Background()
		catalog = apischema.Default()

		var err error
		namespaceDef, err = catalog.Lookup("v1", "Namespace")
		Expect(err).NotTo(HaveOccurred())
		podDef, err = catalog.Lookup("v1", "Pod")
		Expect(err).NotTo(HaveOccurred())

		server = ghttp.NewServer()
		c, err = client.NewNetworkClient(client.NetworkOptions{
			BaseURL: server.URL(),
			Catalog: catalog,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewNetworkClient", func() {
		It("should require a base URL and a catalog", func() {
			_, err := client.NewNetworkClient(client.NetworkOptions{Catalog: catalog})
			Expect(err).To(HaveOccurred())
			_, err = client.NewNetworkClient(client.NetworkOptions{BaseURL: server.URL()})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Create", func() {
		It("should POST the wire form to the collection location", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/v1/namespaces"),
				ghttp.VerifyContentType("application/json"),
				ghttp.VerifyJSON(`{
					"kind": "Namespace",
					"apiVersion": "v1",
					"metadata": {"name": "prod"}
				}`),
				ghttp.RespondWith(http.StatusCreated, `{
					"kind": "Namespace",
					"apiVersion": "v1",
					"metadata": {"name": "prod", "uid": "abc", "resourceVersion": "1"},
					"status": {"phase": "Active"}
				}`),
			))

			created, err := c.Create(ctx, model.Named(namespaceDef, "", "prod"))
			Expect(err).NotTo(HaveOccurred())
			Expect(created.UID()).To(Equal("abc"))
			Expect(created.ResourceVersion()).To(Equal("1"))
		})
	})

	Describe("Get", func() {
		It("should address one member of a namespaced collection", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/api/v1/namespaces/prod/pods/api"),
				ghttp.RespondWith(http.StatusOK, `{
					"kind": "Pod",
					"apiVersion": "v1",
					"metadata": {"name": "api", "namespace": "prod"}
				}`),
			))

			got, err := c.Get(ctx, model.Named(podDef, "prod", "api"))
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name()).To(Equal("api"))
			Expect(got.Namespace()).To(Equal("prod"))
		})

		It("should decode responses that omit the discriminators", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/api/v1/namespaces/prod"),
				ghttp.RespondWith(http.StatusOK, `{"metadata": {"name": "prod"}}`),
			))

			got, err := c.Get(ctx, model.Named(namespaceDef, "", "prod"))
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Kind()).To(Equal("Namespace"))
		})
	})

	Describe("List", func() {
		It("should GET the collection-wide location for a definition", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/api/v1/pods"),
				ghttp.RespondWith(http.StatusOK, `{
					"kind": "PodList",
					"apiVersion": "v1",
					"items": [
						{"metadata": {"name": "worker", "namespace": "prod"}},
						{"metadata": {"name": "api", "namespace": "dev"}}
					]
				}`),
			))

			coll, err := c.List(ctx, podDef)
			Expect(err).NotTo(HaveOccurred())
			Expect(coll.Len()).To(Equal(2))
			Expect(coll.Items()[0].Namespace()).To(Equal("dev"))
		})

		It("should decode list responses that omit the discriminators", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/api/v1/namespaces"),
				ghttp.RespondWith(http.StatusOK, `{"items": [{"metadata": {"name": "prod"}}]}`),
			))

			coll, err := c.List(ctx, namespaceDef)
			Expect(err).NotTo(HaveOccurred())
			Expect(coll.Kind()).To(Equal("Namespace"))
			Expect(coll.Len()).To(Equal(1))
		})
	})

	Describe("Replace", func() {
		It("should PUT the wire form to the object location", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("PUT", "/api/v1/namespaces/prod"),
				ghttp.RespondWith(http.StatusOK, `{
					"kind": "Namespace",
					"apiVersion": "v1",
					"metadata": {"name": "prod", "resourceVersion": "2"}
				}`),
			))

			old := model.Named(namespaceDef, "", "prod")
			replaced, err := c.Replace(ctx, old, old)
			Expect(err).NotTo(HaveOccurred())
			Expect(replaced.ResourceVersion()).To(Equal("2"))
		})

		It("should refuse to rename without touching the server", func() {
			old := model.Named(namespaceDef, "", "prod")
			renamed := model.Named(namespaceDef, "", "other")
			_, err := c.Replace(ctx, old, renamed)
			Expect(err).To(HaveOccurred())
			Expect(server.ReceivedRequests()).To(BeEmpty())
		})
	})

	Describe("Delete", func() {
		It("should DELETE the object location", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("DELETE", "/api/v1/namespaces/prod"),
				ghttp.RespondWith(http.StatusOK, `{"kind": "Status", "apiVersion": "v1", "status": "Success"}`),
			))

			Expect(c.Delete(ctx, model.Named(namespaceDef, "", "prod"))).To(Succeed())
		})
	})

	Describe("error handling", func() {
		It("should preserve the server's Status document", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/api/v1/namespaces/ghost"),
				ghttp.RespondWith(http.StatusNotFound, `{
					"kind": "Status",
					"apiVersion": "v1",
					"status": "Failure",
					"code": 404,
					"reason": "NotFound",
					"message": "namespaces \"ghost\" not found"
				}`),
			))

			_, err := c.Get(ctx, model.Named(namespaceDef, "", "ghost"))
			Expect(apierrors.IsNotFound(err)).To(BeTrue())

			var remote *apierrors.RemoteError
			Expect(errors.As(err, &remote)).To(BeTrue())
			Expect(remote.Code).To(Equal(http.StatusNotFound))
			Expect(remote.Status).NotTo(BeNil())
			Expect(remote.Status.Reason).To(Equal(metav1.StatusReasonNotFound))
		})

		It("should carry non-Status bodies as plain messages", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", "/api/v1/namespaces/prod"),
				ghttp.RespondWith(http.StatusInternalServerError, "boom\n"),
			))

			_, err := c.Get(ctx, model.Named(namespaceDef, "", "prod"))
			Expect(apierrors.IsRemote(err)).To(BeTrue())

			var remote *apierrors.RemoteError
			Expect(errors.As(err, &remote)).To(BeTrue())
			Expect(remote.Status).To(BeNil())
			Expect(remote.Message).To(Equal("boom"))
		})

		It("should classify conflicts as already-exists", func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", "/api/v1/namespaces"),
				ghttp.RespondWith(http.StatusConflict, `{
					"kind": "Status",
					"apiVersion": "v1",
					"status": "Failure",
					"code": 409,
					"reason": "AlreadyExists",
					"message": "namespaces \"prod\" already exists"
				}`),
			))

			_, err := c.Create(ctx, model.Named(namespaceDef, "", "prod"))
			Expect(apierrors.IsAlreadyExists(err)).To(BeTrue())
		})
	})
})
